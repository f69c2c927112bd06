package domain

// PricingMode selects how competitor prices are aggregated
type PricingMode string

const (
	PricingModeMin    PricingMode = "min"
	PricingModeMax    PricingMode = "max"
	PricingModeAvg    PricingMode = "avg"
	PricingModeMedian PricingMode = "median"
)

// IsValidPricingMode checks if a pricing mode is supported
func IsValidPricingMode(mode PricingMode) bool {
	return mode == PricingModeMin ||
		mode == PricingModeMax ||
		mode == PricingModeAvg ||
		mode == PricingModeMedian
}

// AdjustmentType is how an offer increment or a room rate offset is applied
type AdjustmentType string

const (
	AdjustmentPercentage AdjustmentType = "percentage"
	AdjustmentFixed      AdjustmentType = "fixed"
)

// IsValidAdjustmentType checks if an adjustment type is supported
func IsValidAdjustmentType(t AdjustmentType) bool {
	return t == AdjustmentPercentage || t == AdjustmentFixed
}

// NotificationCategory groups notifications for deduplication and display
type NotificationCategory string

const (
	NotificationMSPMissing   NotificationCategory = "msp_missing"
	NotificationOfferMissing NotificationCategory = "offer_missing"
	NotificationLOSMissing   NotificationCategory = "los_missing"
	NotificationPayment      NotificationCategory = "payment"
)

// PMSCode identifies a property management system integration
type PMSCode string

const (
	PMSApaleo  PMSCode = "apaleo"
	PMSAvirato PMSCode = "avirato"
	PMSMrPlan  PMSCode = "mrplan"
	PMSBooking PMSCode = "booking"
	PMSOther   PMSCode = "other"
)

// IsValidPMSCode checks if a PMS code is known
func IsValidPMSCode(code PMSCode) bool {
	switch code {
	case PMSApaleo, PMSAvirato, PMSMrPlan, PMSBooking, PMSOther:
		return true
	}
	return false
}

// PaymentStatus mirrors the Stripe checkout payment status
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

var notificationTitles = map[NotificationCategory]string{
	NotificationMSPMissing:   "Minimum selling prices missing",
	NotificationOfferMissing: "No active offers",
	NotificationLOSMissing:   "Length of stay setup missing",
	NotificationPayment:      "Payment received",
}

var notificationSubjects = map[NotificationCategory]string{
	NotificationMSPMissing:   "minimum selling price",
	NotificationOfferMissing: "active offer",
	NotificationLOSMissing:   "length of stay setup",
}

// NotificationTitle returns the display title of a category
func NotificationTitle(c NotificationCategory) string {
	if title, ok := notificationTitles[c]; ok {
		return title
	}
	return string(c)
}

// NotificationSubject names the rule a coverage category is about
func NotificationSubject(c NotificationCategory) string {
	if subject, ok := notificationSubjects[c]; ok {
		return subject
	}
	return string(c)
}
