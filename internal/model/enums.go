package model

type Platform string

const (
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformWhatsApp  Platform = "WhatsApp"
	PlatformWebChat   Platform = "Web Chat"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformWhatsApp, PlatformWebChat:
		return true
	}
	return false
}

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAgent
}

// MessageKind distinguishes the message variants instead of a loose
// set of optional flags, so consumers can switch exhaustively.
type MessageKind string

const (
	KindPlain       MessageKind = "plain"
	KindPaymentLink MessageKind = "payment_link"
	KindAttachment  MessageKind = "attachment"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindPlain, KindPaymentLink, KindAttachment:
		return true
	}
	return false
}
