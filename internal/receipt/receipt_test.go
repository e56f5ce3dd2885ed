package receipt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		merchant string
		want     Category
	}{
		{"FRESH MART GROCERY", CategoryGrocery},
		{"Blue Door Cafe", CategoryRestaurant},
		{"Shell Station 42", CategoryFuel},
		{"CVS Pharmacy", CategoryPharmacy},
		{"Uber Trip", CategoryTransport},
		{"Grand Cinema", CategoryEntertainment},
		{"City Electric Co", CategoryUtilities},
		{"The Corner Store", CategoryRetail},
		{"Acme Holdings", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.merchant, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryFor(tt.merchant))
		})
	}
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryGrocery.Valid())
	assert.True(t, CategoryOther.Valid())
	assert.False(t, Category("snacks").Valid())
	assert.False(t, Category("").Valid())
}

func TestPaymentMethodFor(t *testing.T) {
	tests := []struct {
		line string
		want PaymentMethod
	}{
		{"VISA CREDIT ****1234", PaymentCreditCard},
		{"DEBIT CARD", PaymentDebitCard},
		{"Paid with Apple Pay", PaymentMobile},
		{"GIFT CARD BALANCE", PaymentGiftCard},
		{"CHEQUE NO 8841", PaymentCheck},
		{"CASH TENDERED", PaymentCash},
		{"CARD ****9876", PaymentOther},
		{"Thank you for shopping", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentMethodFor(tt.line))
		})
	}
}

func TestItemsTotal(t *testing.T) {
	r := &Receipt{}
	_, ok := r.ItemsTotal()
	assert.False(t, ok)

	r.Items = []LineItem{
		{Name: "Milk", TotalPrice: 349},
		{Name: "Bread", TotalPrice: 279},
	}
	sum, ok := r.ItemsTotal()
	require.True(t, ok)
	assert.Equal(t, Money(628), sum)
}

func TestExpectedTotal(t *testing.T) {
	r := &Receipt{Subtotal: MoneyPtr(1601)}
	_, ok := r.ExpectedTotal()
	assert.False(t, ok, "tax is required for the arithmetic check")

	r.Tax = MoneyPtr(128)
	sum, ok := r.ExpectedTotal()
	require.True(t, ok)
	assert.Equal(t, Money(1729), sum)

	r.Tip = MoneyPtr(150)
	r.Discount = MoneyPtr(100)
	sum, ok = r.ExpectedTotal()
	require.True(t, ok)
	assert.Equal(t, Money(1779), sum)
}

func TestReceiptJSONRoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	in := Receipt{
		Merchant: "FRESH MART GROCERY",
		Date:     &date,
		Time:     "14:32",
		Items: []LineItem{
			{Name: "Eggs Dozen", Quantity: "2", UnitPrice: MoneyPtr(425), TotalPrice: 850},
		},
		Subtotal:      MoneyPtr(1601),
		Tax:           MoneyPtr(128),
		Total:         MoneyPtr(1729),
		PaymentMethod: PaymentCreditCard,
		Category:      CategoryGrocery,
		Confidence:    0.91,
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total":"17.29"`, "amounts serialize as decimal strings")
	assert.Contains(t, string(data), `"unit_price":"4.25"`)

	var out Receipt
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Merchant, out.Merchant)
	assert.Equal(t, *in.Total, *out.Total)
	assert.Equal(t, in.Items, out.Items)
	assert.True(t, in.Date.Equal(*out.Date))
}
