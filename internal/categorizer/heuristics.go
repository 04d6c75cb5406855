package categorizer

// expenseHeuristic maps a category name to the description substrings that
// suggest it. Entries are evaluated in table order against the lowercased
// raw description; the first entry with a contained trigger wins.
type expenseHeuristic struct {
	CategoryName string
	Triggers     []string
}

// expenseHeuristics is the static trigger table for expense rows. Triggers
// cover the merchants and wordings that show up in Italian bank exports,
// plus the international brands that appear regardless of locale.
var expenseHeuristics = []expenseHeuristic{
	{"Groceries", []string{"esselunga", "conad", "coop ", "carrefour", "lidl", "eurospin", "penny", "supermercato", "ipermercato"}},
	{"Shopping", []string{"amazon", "zalando", "ebay", "ikea", "decathlon", "mediaworld", "unieuro", "aliexpress"}},
	{"Dining", []string{"ristorante", "pizzeria", "trattoria", "osteria", "mcdonald", "burger", "deliveroo", "justeat", "just eat", "glovo"}},
	{"Transport", []string{"benzina", "carburante", "eni ", "q8", "esso", "tamoil", "autostrade", "telepass", "trenitalia", "italo", "uber"}},
	{"Utilities", []string{"enel", "a2a", "hera ", "iren", "bolletta", "tim ", "vodafone", "fastweb", "windtre", "iliad"}},
	{"Subscriptions", []string{"netflix", "spotify", "disney", "dazn", "nowtv", "audible", "prime video"}},
	{"Health", []string{"farmacia", "parafarmacia", "ospedale", "ambulatorio", "dentista", "analisi"}},
	{"Home", []string{"affitto", "condominio", "mutuo", "locazione"}},
	{"Insurance", []string{"assicurazione", "polizza", "generali", "allianz", "unipol"}},
}

// incomeHeuristic maps a vocabulary of description substrings to the income
// category names it implies.
type incomeHeuristic struct {
	CategoryNames []string
	Triggers      []string
	Confidence    int
}

// incomeHeuristics is the coarse vocabulary for income rows: salary-like
// wordings are a strong signal, generic inbound transfers a weak one.
var incomeHeuristics = []incomeHeuristic{
	{
		Triggers:      []string{"stipendio", "salary", "emolumenti", "cedolino", "payroll", "competenze"},
		CategoryNames: []string{"Stipendio", "Salary"},
		Confidence:    90,
	},
	{
		Triggers:      []string{"bonifico", "giroconto", "accredito", "transfer"},
		CategoryNames: []string{"Bonifici", "Transfers", "Altre Entrate"},
		Confidence:    50,
	},
}
