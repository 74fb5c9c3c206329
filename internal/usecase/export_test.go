package usecase

var (
	CheckoutFailureReason = checkoutFailureReason
	DeliveryID            = deliveryID
)
