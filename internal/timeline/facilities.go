package timeline

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultStateKey = "DEFAULT"

// Facilities holds the static location tables used to label synthesized events.
type Facilities struct {
	States      map[string][]string `yaml:"states"`
	TransitHubs []string            `yaml:"transit_hubs"`
}

// DefaultFacilities returns a copy of the built-in location tables.
func DefaultFacilities() *Facilities {
	states := make(map[string][]string, len(defaultStateFacilities))
	for state, list := range defaultStateFacilities {
		states[state] = append([]string(nil), list...)
	}
	return &Facilities{
		States:      states,
		TransitHubs: append([]string(nil), defaultTransitHubs...),
	}
}

// LoadFacilities reads a YAML override file. Each list present in the file
// replaces the built-in list wholesale; absent lists keep their defaults.
func LoadFacilities(path string) (*Facilities, error) {
	facilities := DefaultFacilities()
	path = strings.TrimSpace(path)
	if path == "" {
		return facilities, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read facilities file: %w", err)
	}

	var override Facilities
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse facilities file: %w", err)
	}

	if len(override.States) > 0 {
		states := make(map[string][]string, len(override.States))
		for state, list := range override.States {
			if len(list) == 0 {
				continue
			}
			states[strings.ToUpper(strings.TrimSpace(state))] = list
		}
		if len(states[defaultStateKey]) == 0 {
			return nil, fmt.Errorf("facilities file: states must include a non-empty %s entry", defaultStateKey)
		}
		facilities.States = states
	}
	if len(override.TransitHubs) > 0 {
		facilities.TransitHubs = override.TransitHubs
	}

	return facilities, nil
}

// ForState returns the facility list for a province code, falling back to
// the DEFAULT entry.
func (f *Facilities) ForState(provinceCode string) []string {
	if f == nil {
		return defaultStateFacilities[defaultStateKey]
	}
	if list := f.States[strings.ToUpper(strings.TrimSpace(provinceCode))]; len(list) > 0 {
		return list
	}
	if list := f.States[defaultStateKey]; len(list) > 0 {
		return list
	}
	return defaultStateFacilities[defaultStateKey]
}

func (f *Facilities) hubs() []string {
	if f == nil || len(f.TransitHubs) == 0 {
		return defaultTransitHubs
	}
	return f.TransitHubs
}

var defaultTransitHubs = []string{
	"Memphis, TN Hub",
	"Louisville, KY Worldport",
	"Indianapolis, IN Hub",
	"Chicago, IL Distribution Center",
	"Dallas, TX Regional Hub",
	"Atlanta, GA Hub",
	"Ontario, CA Hub",
	"Hodgkins, IL Hub",
	"Kansas City, MO Hub",
	"Denver, CO Distribution Center",
	"Newark, NJ Hub",
	"Salt Lake City, UT Hub",
}

var defaultStateFacilities = map[string][]string{
	"AL": {"Birmingham, AL Distribution Center", "Montgomery, AL Facility"},
	"AK": {"Anchorage, AK Distribution Center"},
	"AZ": {"Phoenix, AZ Distribution Center", "Tucson, AZ Facility"},
	"AR": {"Little Rock, AR Distribution Center"},
	"CA": {"Los Angeles, CA Distribution Center", "Oakland, CA Facility", "Sacramento, CA Facility", "San Diego, CA Facility"},
	"CO": {"Denver, CO Distribution Center", "Colorado Springs, CO Facility"},
	"CT": {"Hartford, CT Distribution Center"},
	"DE": {"Wilmington, DE Facility"},
	"FL": {"Orlando, FL Distribution Center", "Miami, FL Facility", "Tampa, FL Facility", "Jacksonville, FL Facility"},
	"GA": {"Atlanta, GA Distribution Center", "Savannah, GA Facility"},
	"HI": {"Honolulu, HI Distribution Center"},
	"ID": {"Boise, ID Facility"},
	"IL": {"Chicago, IL Distribution Center", "Springfield, IL Facility"},
	"IN": {"Indianapolis, IN Distribution Center", "Fort Wayne, IN Facility"},
	"IA": {"Des Moines, IA Distribution Center"},
	"KS": {"Wichita, KS Facility", "Kansas City, KS Distribution Center"},
	"KY": {"Louisville, KY Distribution Center", "Lexington, KY Facility"},
	"LA": {"New Orleans, LA Distribution Center", "Baton Rouge, LA Facility"},
	"ME": {"Portland, ME Facility"},
	"MD": {"Baltimore, MD Distribution Center"},
	"MA": {"Boston, MA Distribution Center", "Worcester, MA Facility"},
	"MI": {"Detroit, MI Distribution Center", "Grand Rapids, MI Facility"},
	"MN": {"Minneapolis, MN Distribution Center", "Saint Paul, MN Facility"},
	"MS": {"Jackson, MS Distribution Center"},
	"MO": {"Kansas City, MO Distribution Center", "Saint Louis, MO Facility"},
	"MT": {"Billings, MT Facility"},
	"NE": {"Omaha, NE Distribution Center"},
	"NV": {"Las Vegas, NV Distribution Center", "Reno, NV Facility"},
	"NH": {"Manchester, NH Facility"},
	"NJ": {"Newark, NJ Distribution Center", "Edison, NJ Facility"},
	"NM": {"Albuquerque, NM Distribution Center"},
	"NY": {"New York, NY Distribution Center", "Albany, NY Facility", "Buffalo, NY Facility"},
	"NC": {"Charlotte, NC Distribution Center", "Raleigh, NC Facility"},
	"ND": {"Fargo, ND Facility"},
	"OH": {"Columbus, OH Distribution Center", "Cleveland, OH Facility", "Cincinnati, OH Facility"},
	"OK": {"Oklahoma City, OK Distribution Center", "Tulsa, OK Facility"},
	"OR": {"Portland, OR Distribution Center"},
	"PA": {"Philadelphia, PA Distribution Center", "Pittsburgh, PA Facility", "Harrisburg, PA Facility"},
	"RI": {"Providence, RI Facility"},
	"SC": {"Columbia, SC Distribution Center", "Charleston, SC Facility"},
	"SD": {"Sioux Falls, SD Facility"},
	"TN": {"Nashville, TN Distribution Center", "Memphis, TN Facility"},
	"TX": {"Dallas, TX Distribution Center", "Houston, TX Facility", "Austin, TX Facility", "San Antonio, TX Facility"},
	"UT": {"Salt Lake City, UT Distribution Center"},
	"VT": {"Burlington, VT Facility"},
	"VA": {"Richmond, VA Distribution Center", "Norfolk, VA Facility"},
	"WA": {"Seattle, WA Distribution Center", "Spokane, WA Facility"},
	"WV": {"Charleston, WV Facility"},
	"WI": {"Milwaukee, WI Distribution Center", "Madison, WI Facility"},
	"WY": {"Cheyenne, WY Facility"},
	"DC": {"Washington, DC Distribution Center"},

	defaultStateKey: {"Regional Distribution Center", "Regional Sorting Facility", "Local Delivery Facility"},
}
