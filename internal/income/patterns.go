package income

// DefaultPatterns returns the built-in English and Spanish income patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "Payroll",
			Kind:     KindSalary,
			Regex:    `\b(payroll|salary|salaries|wages|direct\s*dep(osit)?|dir\s*dep|paycheck)\b`,
			Priority: 100,
		},
		{
			Name:     "Nomina",
			Kind:     KindSalary,
			Regex:    `\b(n[oó]mina|sueldo|salario)\b`,
			Priority: 100,
		},
		{
			Name:     "Interest",
			Kind:     KindIncome,
			Regex:    `\b(interest\s*(earned|income|paid)|dividends?|intereses)\b`,
			Priority: 90,
		},
		{
			Name:     "Refund",
			Kind:     KindIncome,
			Regex:    `\b(refund|reimb(ursement)?|cash\s*back|reembolso|devoluci[oó]n)\b`,
			Priority: 85,
		},
		{
			Name:     "Tax Refund",
			Kind:     KindIncome,
			Regex:    `\b(tax\s*ref(und)?|irs\s*treas)\b`,
			Priority: 95,
		},
		{
			Name:     "Freelance",
			Kind:     KindIncome,
			Regex:    `\b(freelance|payout|invoice\s*paid|payment\s*from|client\s*payment)\b`,
			Priority: 80,
		},
		{
			Name:     "Generic Income",
			Kind:     KindIncome,
			Regex:    `\b(income|ingresos?)\b`,
			Priority: 70,
		},
	}
}
