package config

import (
	"time"

	"github.com/spf13/viper"
)

type PaymentConfig interface {
	GetPaymentSuccessRate() float64
	GetPaymentIntentDelay() time.Duration
	GetPaymentConfirmDelay() time.Duration
}

type Payments struct {
	v *viper.Viper
}

var _ PaymentConfig = Payments{}

// GetPaymentSuccessRate is the probability the simulated gateway confirms a payment
func (p Payments) GetPaymentSuccessRate() float64 {
	return p.v.GetFloat64(paymentSuccessRateVar)
}

func (p Payments) GetPaymentIntentDelay() time.Duration {
	return p.v.GetDuration(paymentIntentDelayVar)
}

func (p Payments) GetPaymentConfirmDelay() time.Duration {
	return p.v.GetDuration(paymentConfirmDelayVar)
}
