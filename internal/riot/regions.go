package riot

import (
	"fmt"
	"sort"
	"strings"
)

// Region pairs a player-facing region code with its API hosts. Route is the
// regional cluster used by account-v1 and match-v5; Platform is the shard
// used by summoner-v4.
type Region struct {
	Name     string
	Route    string
	Platform string
}

var regions = map[string]Region{
	"EUW":  {Name: "EUW", Route: "europe", Platform: "euw1"},
	"EUNE": {Name: "EUNE", Route: "europe", Platform: "eun1"},
	"NA":   {Name: "NA", Route: "americas", Platform: "na1"},
	"KR":   {Name: "KR", Route: "asia", Platform: "kr"},
	"TR":   {Name: "TR", Route: "europe", Platform: "tr1"},
	"RU":   {Name: "RU", Route: "europe", Platform: "ru"},
	"BR":   {Name: "BR", Route: "americas", Platform: "br1"},
	"LAN":  {Name: "LAN", Route: "americas", Platform: "la1"},
	"LAS":  {Name: "LAS", Route: "americas", Platform: "la2"},
	"OCE":  {Name: "OCE", Route: "americas", Platform: "oc1"},
	"JP":   {Name: "JP", Route: "asia", Platform: "jp1"},
}

// LookupRegion resolves a region code, case-insensitively.
func LookupRegion(name string) (Region, error) {
	r, ok := regions[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Region{}, fmt.Errorf("unknown region %q (valid: %s)", name, strings.Join(RegionNames(), ", "))
	}
	return r, nil
}

// RegionNames returns the known region codes in sorted order.
func RegionNames() []string {
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegionalHost returns the base URL for account-v1 and match-v5 calls.
func (r Region) RegionalHost() string {
	return "https://" + r.Route + ".api.riotgames.com"
}

// PlatformHost returns the base URL for summoner-v4 calls.
func (r Region) PlatformHost() string {
	return "https://" + r.Platform + ".api.riotgames.com"
}

// ParseRiotID splits "GameName#TAG" into its parts at the last '#'.
func ParseRiotID(s string) (gameName, tagLine string, err error) {
	i := strings.LastIndex(s, "#")
	if i < 0 {
		return "", "", fmt.Errorf("invalid Riot ID %q: expected Name#TAG", s)
	}
	gameName = strings.TrimSpace(s[:i])
	tagLine = strings.TrimSpace(s[i+1:])
	if gameName == "" || tagLine == "" {
		return "", "", fmt.Errorf("invalid Riot ID %q: expected Name#TAG", s)
	}
	return gameName, tagLine, nil
}
