package domain

// UserProfile is the public profile of the signed-in shopper.
type UserProfile struct {
	ID    ID     `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}
