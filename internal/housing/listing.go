package housing

// Listing is one row of the cleaned file as loaded into the luxury_housing
// table. Nullable columns are pointers; an empty CSV cell decodes to nil.
type Listing struct {
	PropertyID         string   `csv:"Property_ID" db:"Property_ID"`
	MicroMarket        *string  `csv:"Micro_Market" db:"Micro_Market"`
	ProjectName        *string  `csv:"Project_Name" db:"Project_Name"`
	DeveloperName      *string  `csv:"Developer_Name" db:"Developer_Name"`
	UnitSizeSqft       *float64 `csv:"Unit_Size_Sqft" db:"Unit_Size_Sqft"`
	Configuration      *string  `csv:"Configuration" db:"Configuration"`
	TicketPriceCr      *float64 `csv:"Ticket_Price_Cr" db:"Ticket_Price_Cr"`
	TransactionType    *string  `csv:"Transaction_Type" db:"Transaction_Type"`
	BuyerType          *string  `csv:"Buyer_Type" db:"Buyer_Type"`
	PurchaseQuarter    *string  `csv:"Purchase_Quarter" db:"Purchase_Quarter"`
	ConnectivityScore  *float64 `csv:"Connectivity_Score" db:"Connectivity_Score"`
	AmenityScore       *float64 `csv:"Amenity_Score" db:"Amenity_Score"`
	PossessionStatus   *string  `csv:"Possession_Status" db:"Possession_Status"`
	SalesChannel       *string  `csv:"Sales_Channel" db:"Sales_Channel"`
	NRIBuyer           *Flag    `csv:"NRI_Buyer" db:"NRI_Buyer"`
	LocalityInfraScore *float64 `csv:"Locality_Infra_Score" db:"Locality_Infra_Score"`
	AvgTrafficTimeMin  *float64 `csv:"Avg_Traffic_Time_Min" db:"Avg_Traffic_Time_Min"`
	BuyerComments      *string  `csv:"Buyer_Comments" db:"Buyer_Comments"`
	Bedrooms           *int64   `csv:"Bedrooms" db:"Bedrooms"`
	PurchaseYear       *string  `csv:"Purchase_Year" db:"Purchase_Year"`
	Quarter            *string  `csv:"Quarter" db:"Quarter"`
	PricePerSqft       *float64 `csv:"Price_Per_Sqft" db:"Price_Per_Sqft"`
	BookingFlag        int64    `csv:"Booking_Flag" db:"Booking_Flag"`
}

// Values returns the listing's cells aligned to CleanSchema order, with nil
// for missing values, ready to hand to a bulk insert.
func (l Listing) Values() []any {
	return []any{
		l.PropertyID,
		deref(l.MicroMarket),
		deref(l.ProjectName),
		deref(l.DeveloperName),
		deref(l.UnitSizeSqft),
		deref(l.Configuration),
		deref(l.TicketPriceCr),
		deref(l.TransactionType),
		deref(l.BuyerType),
		deref(l.PurchaseQuarter),
		deref(l.ConnectivityScore),
		deref(l.AmenityScore),
		deref(l.PossessionStatus),
		deref(l.SalesChannel),
		flagValue(l.NRIBuyer),
		deref(l.LocalityInfraScore),
		deref(l.AvgTrafficTimeMin),
		deref(l.BuyerComments),
		deref(l.Bedrooms),
		deref(l.PurchaseYear),
		deref(l.Quarter),
		deref(l.PricePerSqft),
		l.BookingFlag,
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func flagValue(f *Flag) any {
	if f == nil {
		return nil
	}
	return f.DBValue()
}
