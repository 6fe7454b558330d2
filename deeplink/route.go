package deeplink

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/signals-client/internal/utils"
)

// Screen names a destination of the navigation surface.
type Screen string

const (
	ScreenLogin        Screen = "Login"
	ScreenDashboard    Screen = "Dashboard"
	ScreenSignalDetail Screen = "SignalDetail"
	ScreenPrediction   Screen = "Prediction"
)

// Params are the arguments of the symbol screens.
type Params struct {
	Symbol  string
	AIModel *string
	Date    *string
}

// Route is a navigation target.
type Route struct {
	Screen Screen
	Params *Params
}

func (r Route) String() string {
	if r.Params == nil {
		return string(r.Screen)
	}
	return fmt.Sprintf("%s(%s)", r.Screen, r.Params.Symbol)
}

// Intent is a parsed deep link.
type Intent struct {
	Path     string
	Query    url.Values
	RawQuery string
}

// Parse extracts the path and query of raw. Custom schemes carry the path in the host
// (bamtoly://detail); http(s) links carry it in the URL path. Expo development links put
// it after "/--/".
func Parse(raw string) (Intent, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Intent{}, err
	}
	if u.Scheme == "" {
		return Intent{}, fmt.Errorf("deep link %q has no scheme", raw)
	}

	var path string
	switch {
	case u.Opaque != "":
		path = u.Opaque
	case u.Scheme == "http" || u.Scheme == "https":
		path = u.Path
	default:
		path = u.Host + u.Path
	}
	if _, after, found := strings.Cut(path, "/--/"); found {
		path = after
	}

	return Intent{
		Path:     strings.Trim(path, "/"),
		Query:    u.Query(),
		RawQuery: u.RawQuery,
	}, nil
}

// Resolve maps an intent to a route. Symbol screens without a symbol resolve to nothing;
// unknown paths go to the dashboard.
func Resolve(intent Intent) (Route, bool) {
	switch intent.Path {
	case "detail", "predict":
		symbol := intent.Query.Get("symbol")
		if symbol == "" {
			return Route{}, false
		}
		screen := ScreenSignalDetail
		if intent.Path == "predict" {
			screen = ScreenPrediction
		}
		return Route{Screen: screen, Params: &Params{
			Symbol:  symbol,
			AIModel: utils.NonEmptyPtr(intent.Query.Get("aiModel")),
			Date:    utils.NonEmptyPtr(intent.Query.Get("date")),
		}}, true
	case "login":
		return Route{Screen: ScreenLogin}, true
	default:
		return Route{Screen: ScreenDashboard}, true
	}
}
