package category

// Template is a catalog entry without identity.
type Template struct {
	Name  string
	Type  Type
	Icon  string
	Color string
}

// Defaults is the catalog seeded into a family that has no categories yet.
var Defaults = []Template{
	{Name: "Gaji", Type: TypeIncome, Icon: "💰", Color: "#16a34a"},
	{Name: "Bonus", Type: TypeIncome, Icon: "🎁", Color: "#059669"},
	{Name: "Freelance", Type: TypeIncome, Icon: "💻", Color: "#10b981"},
	{Name: "Side Hustle", Type: TypeIncome, Icon: "🚀", Color: "#059669"},
	{Name: "Investasi", Type: TypeIncome, Icon: "📈", Color: "#34d399"},
	{Name: "Passive Income", Type: TypeIncome, Icon: "🏦", Color: "#10b981"},
	{Name: "Cashback/Reward", Type: TypeIncome, Icon: "🎊", Color: "#22c55e"},
	{Name: "Lain-lain", Type: TypeIncome, Icon: "💵", Color: "#6ee7b7"},

	{Name: "Makanan & Minuman", Type: TypeExpense, Icon: "🍽️", Color: "#dc2626"},
	{Name: "Transportasi", Type: TypeExpense, Icon: "🚗", Color: "#ea580c"},
	{Name: "Belanja Groceries", Type: TypeExpense, Icon: "🛒", Color: "#d97706"},
	{Name: "Kopi & Jajan", Type: TypeExpense, Icon: "☕", Color: "#92400e"},
	{Name: "Ojek Online", Type: TypeExpense, Icon: "🏍️", Color: "#f59e0b"},
	{Name: "Tagihan & Utilities", Type: TypeExpense, Icon: "⚡", Color: "#ca8a04"},
	{Name: "Internet & Pulsa", Type: TypeExpense, Icon: "📱", Color: "#059669"},
	{Name: "Entertainment", Type: TypeExpense, Icon: "🎬", Color: "#7c3aed"},
	{Name: "Kesehatan", Type: TypeExpense, Icon: "🏥", Color: "#c026d3"},
	{Name: "Olahraga & Gym", Type: TypeExpense, Icon: "💪", Color: "#dc2626"},
	{Name: "Pendidikan", Type: TypeExpense, Icon: "📚", Color: "#2563eb"},
	{Name: "Fashion & Kecantikan", Type: TypeExpense, Icon: "👗", Color: "#db2777"},
	{Name: "Rumah & Furniture", Type: TypeExpense, Icon: "🏠", Color: "#059669"},
	{Name: "Sewa Kost/Kontrakan", Type: TypeExpense, Icon: "🏠", Color: "#0d9488"},
	{Name: "Bensin & Parkir", Type: TypeExpense, Icon: "⛽", Color: "#ea580c"},
	{Name: "Belanja Online", Type: TypeExpense, Icon: "📦", Color: "#8b5cf6"},
	{Name: "Gift & Donasi", Type: TypeExpense, Icon: "🎁", Color: "#10b981"},
	{Name: "Tabungan", Type: TypeExpense, Icon: "🏦", Color: "#0d9488"},
	{Name: "Asuransi", Type: TypeExpense, Icon: "🛡️", Color: "#0891b2"},
	{Name: "Investasi", Type: TypeExpense, Icon: "📈", Color: "#1d4ed8"},
	{Name: "Lain-lain", Type: TypeExpense, Icon: "💳", Color: "#64748b"},
}

func (t Template) New(familyID string) *Category {
	return &Category{
		FamilyID: familyID,
		Name:     t.Name,
		Type:     t.Type,
		Icon:     t.Icon,
		Color:    t.Color,
	}
}
