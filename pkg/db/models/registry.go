package models

// All lists every persisted model in dependency order. Used for SQLite schema
// bootstrapping where the Postgres migrations do not apply.
func All() []any {
	return []any{
		&User{},
		&ItemCategory{},
		&Item{},
		&IncomingShipment{},
		&IncomingShipmentLine{},
		&SerialUnit{},
		&OutgoingShipment{},
		&OutgoingShipmentLine{},
		&StockTransaction{},
	}
}
