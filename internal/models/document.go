// Package models содержит доменную модель бизнес-документа магазина.
package models

import "time"

// Типы бизнес-документов, принимаемые на проверку.
const (
	DocumentBusinessLicense = "business_license"
	DocumentTaxCert         = "tax_cert"
	DocumentRegistration    = "registration"
)

// Статусы проверки документа. Approved и Rejected — терминальные.
const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

// ValidDocumentType проверяет, что тип документа известен системе.
func ValidDocumentType(docType string) bool {
	switch docType {
	case DocumentBusinessLicense, DocumentTaxCert, DocumentRegistration:
		return true
	}
	return false
}

// BusinessDocument представляет загруженный документ магазина.
// Удалить документ может только владелец и только в статусе pending;
// RejectionReason заполняется при отклонении.
type BusinessDocument struct {
	ID              int        // Идентификатор документа
	OwnerUID        string     // UID администратора магазина
	Type            string     // Один из типов Document*
	FileKey         string     // Ключ сохранённого файла
	ApprovalStatus  string     // pending / approved / rejected
	RejectionReason string     // Причина отклонения, непустая для rejected
	ProductID       *int       // Необязательная привязка к товару
	ExpiresAt       *time.Time // Необязательный срок действия документа
	CreatedAt       time.Time  // Дата загрузки
	UpdatedAt       time.Time  // Дата последнего решения
}
