package model

// All lists every table model, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Survey{},
		&SurveyResponse{},
		&UserBalance{},
		&BalanceTransaction{},
		&PaymentMethod{},
		&WithdrawalRequest{},
		&UserProfile{},
		&Notification{},
	}
}
