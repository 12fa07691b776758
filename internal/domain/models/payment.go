package models

// CardPayment is the simulated card form. Nothing is charged; a valid form
// only yields a transaction id for the receipt.
type CardPayment struct {
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

type PaymentResult struct {
	BookingID     int64  `json:"bookingId"`
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
}
