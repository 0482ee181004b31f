package enum

// ── Group A: Order state machine ──

const (
	OrderStatusAwaitingConfirmation = "AWAITING_CONFIRMATION"
	OrderStatusPending              = "PENDING"
	OrderStatusPreparing            = "PREPARING"
	OrderStatusReady                = "READY"
	OrderStatusCompleted            = "COMPLETED"
	OrderStatusError                = "ERROR"
)

// OrderStatusLabels maps each status to the label printed on tickets and shown in the admin panel.
var OrderStatusLabels = map[string]string{
	OrderStatusAwaitingConfirmation: "待店長確認",
	OrderStatusPending:              "待處理",
	OrderStatusPreparing:            "製作中",
	OrderStatusReady:                "可以取餐",
	OrderStatusCompleted:            "已完成",
	OrderStatusError:                "錯誤",
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	_, ok := OrderStatusLabels[s]
	return ok
}

// ── Group B: Order list filters (admin panel tabs) ──

const (
	OrderFilterAll       = "all"
	OrderFilterPending   = "pending"
	OrderFilterActive    = "active"
	OrderFilterCompleted = "completed"
)

// ── Group C: Configurable labels ──

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
)

const (
	LanguageZH = "zh"
	LanguageEN = "en"
)

const RoleAdmin = "ADMIN"

// ── Group D: Option groups ──

const (
	GroupDoneness  = "doneness"
	GroupSauce     = "sauce"
	GroupDrink     = "drink"
	GroupDessertA  = "dessert_a"
	GroupDessertB  = "dessert_b"
	GroupPastaA    = "pasta_a"
	GroupPastaB    = "pasta_b"
	GroupComponent = "component"
	GroupSide      = "side"
	GroupMulti     = "multi"
	GroupAddon     = "addon"
)

// Shared option lists edited from the admin panel, keyed as persisted.
const (
	OptionsSauces      = "sauces"
	OptionsDessertsA   = "desserts_a"
	OptionsDessertsB   = "desserts_b"
	OptionsPastasA     = "pastas_a"
	OptionsPastasB     = "pastas_b"
	OptionsColdNoodles = "cold_noodles"
	OptionsSimpleMeals = "simple_meals"
)

// IsValidLanguage reports whether lang is a supported display language.
func IsValidLanguage(lang string) bool {
	return lang == LanguageZH || lang == LanguageEN
}

// IsValidOrderType reports whether t is a known order type.
func IsValidOrderType(t string) bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeaway
}
