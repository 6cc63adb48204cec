package storage

// PricePoint is one archived tick of the price_history table.
type PricePoint struct {
	AssetID     int
	TimestampMs int64
	// Price is the NUMERIC column rendered as text, so no precision is lost
	// before the pipeline parses it.
	Price string
}
