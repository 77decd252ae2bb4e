package domain

// NoticeLevel classifies a transient notification shown to the shopper.
type NoticeLevel string

const (
	NoticeSuccess       NoticeLevel = "success"
	NoticeError         NoticeLevel = "error"
	NoticeLoginRequired NoticeLevel = "login_required"
)

// Notice is a transient, user-visible message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
