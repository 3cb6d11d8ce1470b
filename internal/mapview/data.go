package mapview

// Kind distinguishes permanent shops from recurring fairs and markets.
type Kind string

const (
	KindShop Kind = "shop"
	KindFair Kind = "fair"
)

// PointOfInterest is one map entry. The set is fixed; every open of the
// viewer redraws from the same list.
type PointOfInterest struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Kind        Kind    `json:"kind"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Rating      float64 `json:"rating"`
	IsOpen      bool    `json:"is_open"`
	Schedule    string  `json:"schedule,omitempty"`
}

// Map center: Lucknow.
const (
	CenterLat   = 26.8467
	CenterLng   = 80.9462
	DefaultZoom = 12
)

// pointsOfInterest is the fixed shop/fair list the map renders.
var pointsOfInterest = []PointOfInterest{
	{
		ID: 1, Name: "Sharma's Sweets", Kind: KindShop,
		Category: "Food & Beverages", Description: "Traditional Indian sweets and snacks",
		Lat: 26.8467, Lng: 80.9462, Rating: 4.5, IsOpen: true,
	},
	{
		ID: 2, Name: "Handicrafts Corner", Kind: KindShop,
		Category: "Arts & Crafts", Description: "Handmade crafts and traditional items",
		Lat: 26.8567, Lng: 80.9562, Rating: 4.2, IsOpen: true,
	},
	{
		ID: 3, Name: "Organic Vegetable Store", Kind: KindShop,
		Category: "Fresh Produce", Description: "Fresh organic vegetables and fruits",
		Lat: 26.8367, Lng: 80.9362, Rating: 4.8, IsOpen: true,
	},
	{
		ID: 4, Name: "Fashion Boutique", Kind: KindShop,
		Category: "Clothing", Description: "Trendy clothes and accessories",
		Lat: 26.8267, Lng: 80.9262, Rating: 4.0, IsOpen: false,
	},
	{
		ID: 5, Name: "Weekend Farmers Market", Kind: KindFair,
		Category: "Farmers Market", Description: "Fresh produce, local vendors every weekend",
		Lat: 26.8500, Lng: 80.9400, Rating: 4.7, IsOpen: true,
		Schedule: "Saturdays & Sundays, 7AM - 2PM",
	},
	{
		ID: 6, Name: "Craft Fair", Kind: KindFair,
		Category: "Arts & Crafts", Description: "Local artisans showcase handmade items",
		Lat: 26.8400, Lng: 80.9500, Rating: 4.3, IsOpen: false,
		Schedule: "First Sunday of every month",
	},
	{
		ID: 7, Name: "Street Food Festival", Kind: KindFair,
		Category: "Food Festival", Description: "Best street food from around the city",
		Lat: 26.8600, Lng: 80.9300, Rating: 4.9, IsOpen: true,
		Schedule: "Daily 6PM - 11PM",
	},
}

// PointsOfInterest returns a copy of the fixed list.
func PointsOfInterest() []PointOfInterest {
	out := make([]PointOfInterest, len(pointsOfInterest))
	copy(out, pointsOfInterest)
	return out
}
