package seed

type city struct {
	Name      string
	State     string
	Longitude float64
	Latitude  float64
}

var cities = []city{
	{"New York", "New York", -74.0059, 40.7128},
	{"Los Angeles", "California", -118.2437, 34.0522},
	{"Chicago", "Illinois", -87.6298, 41.8781},
	{"Houston", "Texas", -95.3698, 29.7604},
	{"Philadelphia", "Pennsylvania", -75.1652, 39.9526},
	{"Phoenix", "Arizona", -112.0740, 33.4484},
	{"San Antonio", "Texas", -98.4936, 29.4241},
	{"San Diego", "California", -117.1611, 32.7157},
	{"Dallas", "Texas", -96.7970, 32.7767},
	{"San Jose", "California", -121.8863, 37.3382},
	{"Austin", "Texas", -97.7431, 30.2672},
	{"Indianapolis", "Indiana", -86.1581, 39.7684},
	{"Jacksonville", "Florida", -81.6557, 30.3322},
	{"San Francisco", "California", -122.4194, 37.7749},
	{"Columbus", "Ohio", -82.9988, 39.9612},
	{"Charlotte", "North Carolina", -80.8431, 35.2271},
	{"Fort Worth", "Texas", -97.3308, 32.7555},
	{"Detroit", "Michigan", -83.0458, 42.3314},
	{"El Paso", "Texas", -106.4850, 31.7619},
	{"Memphis", "Tennessee", -90.0490, 35.1495},
	{"Seattle", "Washington", -122.3321, 47.6062},
	{"Denver", "Colorado", -104.9903, 39.7392},
	{"Washington", "District of Columbia", -77.0369, 38.9072},
	{"Boston", "Massachusetts", -71.0589, 42.3601},
	{"Nashville", "Tennessee", -86.7816, 36.1627},
	{"Baltimore", "Maryland", -76.6122, 39.2904},
	{"Oklahoma City", "Oklahoma", -97.5164, 35.4676},
	{"Portland", "Oregon", -122.6765, 45.5231},
	{"Las Vegas", "Nevada", -115.1398, 36.1699},
	{"Louisville", "Kentucky", -85.7585, 38.2527},
	{"Milwaukee", "Wisconsin", -87.9065, 43.0389},
	{"Albuquerque", "New Mexico", -106.6504, 35.0844},
	{"Tucson", "Arizona", -110.9747, 32.2226},
	{"Fresno", "California", -119.7871, 36.7378},
	{"Sacramento", "California", -121.4944, 38.5816},
	{"Kansas City", "Missouri", -94.5786, 39.0997},
	{"Atlanta", "Georgia", -84.3880, 33.7490},
	{"Omaha", "Nebraska", -95.9345, 41.2565},
	{"Raleigh", "North Carolina", -78.6382, 35.7796},
	{"Miami", "Florida", -80.1918, 25.7617},
	{"Minneapolis", "Minnesota", -93.2650, 44.9778},
	{"Tulsa", "Oklahoma", -95.9928, 36.1540},
	{"New Orleans", "Louisiana", -90.0715, 29.9511},
	{"Salt Lake City", "Utah", -111.8910, 40.7608},
	{"Boise", "Idaho", -116.2023, 43.6150},
	{"Anchorage", "Alaska", -149.9003, 61.2181},
	{"Honolulu", "Hawaii", -157.8583, 21.3069},
	{"Burlington", "Vermont", -73.2121, 44.4759},
	{"Missoula", "Montana", -113.9940, 46.8721},
	{"Flagstaff", "Arizona", -111.6513, 35.1983},
}

var descriptors = []string{
	"Forest", "Ancient", "Petrified", "Roaring", "Cascade", "Tumbling",
	"Silent", "Redwood", "Bullfrog", "Maple", "Misty", "Elk", "Grizzly",
	"Ocean", "Sea", "Sky", "Dusty", "Diamond",
}

var places = []string{
	"Flats", "Village", "Canyon", "Pond", "Group Camp", "Horse Camp",
	"Ghost Town", "Camp", "Dispersed Camp", "Backcountry", "River",
	"Creek", "Creekside", "Bay", "Spring", "Bayshore", "Sands",
	"Mule Camp", "Hunting Camp", "Cliffs", "Hollow",
}

var sampleImages = []string{
	"https://images.unsplash.com/photo-1504280390367-361c6d9f38f4?w=800",
	"https://images.unsplash.com/photo-1478131143081-80f7f84ca84d?w=800",
	"https://images.unsplash.com/photo-1523987355523-c7b5b0dd90a7?w=800",
	"https://images.unsplash.com/photo-1487730116645-74489c95b41b?w=800",
	"https://images.unsplash.com/photo-1445308394109-4ec2920981b1?w=800",
	"https://images.unsplash.com/photo-1537905569824-f89f14cceb68?w=800",
}

const lorem = "Lorem ipsum dolor sit amet consectetur, adipisicing elit. Accusantium ipsum, ea illum earum " +
	"repellendus commodi tempora ratione, quasi ad pariatur tenetur iste nobis dicta deserunt placeat. " +
	"Voluptate necessitatibus dolorum sunt?"
