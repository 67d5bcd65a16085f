// Package housing names the columns of the luxury housing transactions
// dataset and declares their types, both as they appear in the raw export and
// as they are written by the cleaning pipeline.
package housing

import "housing-etl/internal/table"

// Raw export columns.
const (
	PropertyID         = "Property_ID"
	MicroMarket        = "Micro_Market"
	ProjectName        = "Project_Name"
	DeveloperName      = "Developer_Name"
	UnitSizeSqft       = "Unit_Size_Sqft"
	Configuration      = "Configuration"
	TicketPriceCr      = "Ticket_Price_Cr"
	TransactionType    = "Transaction_Type"
	BuyerType          = "Buyer_Type"
	PurchaseQuarter    = "Purchase_Quarter"
	ConnectivityScore  = "Connectivity_Score"
	AmenityScore       = "Amenity_Score"
	PossessionStatus   = "Possession_Status"
	SalesChannel       = "Sales_Channel"
	NRIBuyer           = "NRI_Buyer"
	LocalityInfraScore = "Locality_Infra_Score"
	AvgTrafficTimeMin  = "Avg_Traffic_Time_Min"
	BuyerComments      = "Buyer_Comments"
)

// Columns added by the cleaning pipeline, in the order they are appended.
const (
	Bedrooms     = "Bedrooms"
	PurchaseYear = "Purchase_Year"
	Quarter      = "Quarter"
	PricePerSqft = "Price_Per_Sqft"
	BookingFlag  = "Booking_Flag"
)

// RawSchema declares how the raw CSV columns are typed on load. Price,
// configuration and NRI flag arrive as free text and are retyped by the
// normalizer. Columns missing from the file are simply absent from the table;
// extra columns are typed by inference.
func RawSchema() table.Schema {
	return table.Schema{
		{Name: PropertyID, Type: table.TypeText},
		{Name: MicroMarket, Type: table.TypeText},
		{Name: ProjectName, Type: table.TypeText},
		{Name: DeveloperName, Type: table.TypeText},
		{Name: UnitSizeSqft, Type: table.TypeFloat},
		{Name: Configuration, Type: table.TypeText},
		{Name: TicketPriceCr, Type: table.TypeText},
		{Name: TransactionType, Type: table.TypeText},
		{Name: BuyerType, Type: table.TypeText},
		{Name: PurchaseQuarter, Type: table.TypeText},
		{Name: ConnectivityScore, Type: table.TypeFloat},
		{Name: AmenityScore, Type: table.TypeFloat},
		{Name: PossessionStatus, Type: table.TypeText},
		{Name: SalesChannel, Type: table.TypeText},
		{Name: NRIBuyer, Type: table.TypeText},
		{Name: LocalityInfraScore, Type: table.TypeFloat},
		{Name: AvgTrafficTimeMin, Type: table.TypeFloat},
		{Name: BuyerComments, Type: table.TypeText},
	}
}

// CleanSchema is the column set of the cleaned file and of the luxury_housing
// table, in insert order.
func CleanSchema() table.Schema {
	s := RawSchema()
	for i := range s {
		switch s[i].Name {
		case TicketPriceCr:
			s[i].Type = table.TypeFloat
		case NRIBuyer:
			s[i].Type = table.TypeBool
		}
	}
	return append(s,
		table.Column{Name: Bedrooms, Type: table.TypeInt},
		table.Column{Name: PurchaseYear, Type: table.TypeText},
		table.Column{Name: Quarter, Type: table.TypeText},
		table.Column{Name: PricePerSqft, Type: table.TypeFloat},
		table.Column{Name: BookingFlag, Type: table.TypeInt},
	)
}

// Required lists the columns the cleaning stages cannot run without. The
// remaining steps are skipped when their source column is absent.
var Required = []string{Configuration, TicketPriceCr, NRIBuyer}
