package mailtm

// Account is a mail account as returned by the API.
type Account struct {
	ID         string `json:"id"`
	Address    string `json:"address"`
	Quota      int64  `json:"quota"`
	Used       int64  `json:"used"`
	IsDisabled bool   `json:"isDisabled"`
	IsDeleted  bool   `json:"isDeleted"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// Domain is an address domain offered for account creation.
type Domain struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Message is a mailbox listing entry.
type Message struct {
	ID             string `json:"id"`
	FromAddress    string `json:"fromAddress"`
	ToAddress      string `json:"toAddress"`
	Subject        string `json:"subject"`
	Intro          string `json:"intro"`
	Seen           bool   `json:"seen"`
	IsDeleted      bool   `json:"isDeleted"`
	HasAttachments bool   `json:"hasAttachments"`
	Size           int64  `json:"size"`
	DownloadURL    string `json:"downloadUrl"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// MessageDetail is a full message including any available bodies.
type MessageDetail struct {
	Message
	Text string   `json:"text"`
	HTML []string `json:"html"`
}

// AccountStats summarizes the logged-in account and client diagnostics.
type AccountStats struct {
	Address         string  `json:"address"`
	QuotaUsed       int64   `json:"quota_used"`
	QuotaTotal      int64   `json:"quota_total"`
	QuotaPercentage float64 `json:"quota_percentage"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"last_updated"`
	RequestCount    int64   `json:"request_count"`
}

// mailAddress is the wire shape of a sender or recipient.
type mailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// messageWire is the wire shape of a message listing entry.
type messageWire struct {
	ID             string        `json:"id"`
	From           mailAddress   `json:"from"`
	To             []mailAddress `json:"to"`
	Subject        string        `json:"subject"`
	Intro          string        `json:"intro"`
	Seen           bool          `json:"seen"`
	IsDeleted      bool          `json:"isDeleted"`
	HasAttachments bool          `json:"hasAttachments"`
	Size           int64         `json:"size"`
	DownloadURL    string        `json:"downloadUrl"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

// toMessage flattens the wire shape into a Message.
func (w *messageWire) toMessage() Message {
	toAddress := ""
	if len(w.To) > 0 {
		toAddress = w.To[0].Address
	}
	return Message{
		ID:             w.ID,
		FromAddress:    w.From.Address,
		ToAddress:      toAddress,
		Subject:        w.Subject,
		Intro:          w.Intro,
		Seen:           w.Seen,
		IsDeleted:      w.IsDeleted,
		HasAttachments: w.HasAttachments,
		Size:           w.Size,
		DownloadURL:    w.DownloadURL,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// messageDetailWire is the wire shape of a full message.
type messageDetailWire struct {
	messageWire
	Text string   `json:"text"`
	HTML []string `json:"html"`
}

func (w *messageDetailWire) toDetail() MessageDetail {
	return MessageDetail{
		Message: w.messageWire.toMessage(),
		Text:    w.Text,
		HTML:    w.HTML,
	}
}

// tokenResponse is the POST /token response body.
type tokenResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// domainList and messageList are hydra collection envelopes.
type domainList struct {
	Member []Domain `json:"hydra:member"`
}

type messageList struct {
	Member []messageWire `json:"hydra:member"`
}
