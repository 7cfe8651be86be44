package models

// DocumentDecisionInfo — сообщение о решении по документу, публикуемое
// в брокер и потребляемое сервисом отправки писем.
type DocumentDecisionInfo struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	DocumentID      int    `json:"document_id"`
	DocumentType    string `json:"document_type"`
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}
