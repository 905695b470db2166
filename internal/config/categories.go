package config

// CategoryWeights orders command categories in generated docs, lower first.
var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"📢 Utilities":    10,
	"🎲 Gameplay":     20,
	"🧰 Context":      30,
}
