package f1api

import "strings"

// DriverInfo is the normalized driver record handed to the rest of the app.
type DriverInfo struct {
	ID               string `json:"id"`
	FullName         string `json:"name"`
	Code             string `json:"code"`
	Nationality      string `json:"nationality"`
	Team             string `json:"team"`
	StandingPosition int    `json:"standingPosition,omitempty"`
	Source           string `json:"source"`
}

const (
	SourceAPI     = "api"
	SourceDefault = "default"

	unknown = "Unknown"
)

var roster = []DriverInfo{
	{ID: "albon", FullName: "Alexander Albon", Code: "ALB", Nationality: "Thai", Team: "Williams"},
	{ID: "alonso", FullName: "Fernando Alonso", Code: "ALO", Nationality: "Spanish", Team: "Aston Martin"},
	{ID: "bearman", FullName: "Oliver Bearman", Code: "BEA", Nationality: "British", Team: "Haas F1 Team"},
	{ID: "bottas", FullName: "Valtteri Bottas", Code: "BOT", Nationality: "Finnish", Team: "Sauber"},
	{ID: "gasly", FullName: "Pierre Gasly", Code: "GAS", Nationality: "French", Team: "Alpine F1 Team"},
	{ID: "hamilton", FullName: "Lewis Hamilton", Code: "HAM", Nationality: "British", Team: "Mercedes"},
	{ID: "hulkenberg", FullName: "Nico Hulkenberg", Code: "HUL", Nationality: "German", Team: "Haas F1 Team"},
	{ID: "lawson", FullName: "Liam Lawson", Code: "LAW", Nationality: "New Zealander", Team: "RB F1 Team"},
	{ID: "leclerc", FullName: "Charles Leclerc", Code: "LEC", Nationality: "Monegasque", Team: "Ferrari"},
	{ID: "magnussen", FullName: "Kevin Magnussen", Code: "MAG", Nationality: "Danish", Team: "Haas F1 Team"},
	{ID: "norris", FullName: "Lando Norris", Code: "NOR", Nationality: "British", Team: "McLaren"},
	{ID: "ocon", FullName: "Esteban Ocon", Code: "OCO", Nationality: "French", Team: "Alpine F1 Team"},
	{ID: "perez", FullName: "Sergio Perez", Code: "PER", Nationality: "Mexican", Team: "Red Bull"},
	{ID: "piastri", FullName: "Oscar Piastri", Code: "PIA", Nationality: "Australian", Team: "McLaren"},
	{ID: "ricciardo", FullName: "Daniel Ricciardo", Code: "RIC", Nationality: "Australian", Team: "RB F1 Team"},
	{ID: "russell", FullName: "George Russell", Code: "RUS", Nationality: "British", Team: "Mercedes"},
	{ID: "sainz", FullName: "Carlos Sainz", Code: "SAI", Nationality: "Spanish", Team: "Ferrari"},
	{ID: "stroll", FullName: "Lance Stroll", Code: "STR", Nationality: "Canadian", Team: "Aston Martin"},
	{ID: "tsunoda", FullName: "Yuki Tsunoda", Code: "TSU", Nationality: "Japanese", Team: "RB F1 Team"},
	{ID: "max_verstappen", FullName: "Max Verstappen", Code: "VER", Nationality: "Dutch", Team: "Red Bull"},
	{ID: "zhou", FullName: "Guanyu Zhou", Code: "ZHO", Nationality: "Chinese", Team: "Sauber"},
	{ID: "vettel", FullName: "Sebastian Vettel", Code: "VET", Nationality: "German", Team: "Aston Martin"},
	{ID: "raikkonen", FullName: "Kimi Raikkonen", Code: "RAI", Nationality: "Finnish", Team: "Alfa Romeo"},
	{ID: "button", FullName: "Jenson Button", Code: "BUT", Nationality: "British", Team: "McLaren"},
	{ID: "rosberg", FullName: "Nico Rosberg", Code: "ROS", Nationality: "German", Team: "Mercedes"},
	{ID: "massa", FullName: "Felipe Massa", Code: "MAS", Nationality: "Brazilian", Team: "Williams"},
	{ID: "webber", FullName: "Mark Webber", Code: "WEB", Nationality: "Australian", Team: "Red Bull"},
	{ID: "kubica", FullName: "Robert Kubica", Code: "KUB", Nationality: "Polish", Team: "Alfa Romeo"},
	{ID: "grosjean", FullName: "Romain Grosjean", Code: "GRO", Nationality: "French", Team: "Haas F1 Team"},
	{ID: "michael_schumacher", FullName: "Michael Schumacher", Code: "MSC", Nationality: "German", Team: "Ferrari"},
	{ID: "barrichello", FullName: "Rubens Barrichello", Code: "BAR", Nationality: "Brazilian", Team: "Ferrari"},
	{ID: "coulthard", FullName: "David Coulthard", Code: "COU", Nationality: "British", Team: "McLaren"},
	{ID: "hakkinen", FullName: "Mika Hakkinen", Code: "HAK", Nationality: "Finnish", Team: "McLaren"},
	{ID: "montoya", FullName: "Juan Pablo Montoya", Code: "MON", Nationality: "Colombian", Team: "Williams"},
}

// Drivers returns a copy of the built-in roster.
func Drivers() []DriverInfo {
	out := make([]DriverInfo, len(roster))
	copy(out, roster)
	for i := range out {
		out[i].Source = SourceDefault
	}
	return out
}

// DefaultDriver returns the roster entry matching name, or a placeholder carrying the
// name as given and "Unknown" metadata.
func DefaultDriver(name string) DriverInfo {
	name = strings.TrimSpace(name)
	for _, d := range roster {
		if matches(d.FullName, d.Code, d.ID, name) {
			d.Source = SourceDefault
			return d
		}
	}
	return DriverInfo{
		FullName:    name,
		Nationality: unknown,
		Team:        unknown,
		Source:      SourceDefault,
	}
}

func matches(fullName, code, id, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.ToLower(fullName) == q ||
		(code != "" && strings.ToLower(code) == q) ||
		(id != "" && strings.ToLower(id) == q)
}
