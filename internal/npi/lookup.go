package npi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// registryURL is the NPPES NPI Registry endpoint.
var registryURL = "https://npiregistry.cms.hhs.gov/api/?version=2.1"

var client = &http.Client{Timeout: 10 * time.Second}

// ProviderInfo holds the key details returned by the NPPES NPI Registry.
type ProviderInfo struct {
	NPI             int64  `json:"npi"`
	Name            string `json:"name"`                 // "LAST, FIRST MIDDLE"
	Credential      string `json:"credential,omitempty"` // e.g. "MD", "DO"
	PrimaryTaxonomy string `json:"taxonomy,omitempty"`   // e.g. "Internal Medicine"
	PracticeAddress string `json:"practice_address,omitempty"`
	PracticePhone   string `json:"practice_phone,omitempty"`
	Status          string `json:"status,omitempty"` // "A" = active
}

type apiResponse struct {
	ResultCount int         `json:"result_count"`
	Results     []apiResult `json:"results"`
}

type apiResult struct {
	Number     string        `json:"number"`
	Basic      apiBasic      `json:"basic"`
	Addresses  []apiAddress  `json:"addresses"`
	Taxonomies []apiTaxonomy `json:"taxonomies"`
}

type apiBasic struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Credential string `json:"credential"`
	Status     string `json:"status"`
}

type apiAddress struct {
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
	AddressPurpose string `json:"address_purpose"` // "LOCATION" or "MAILING"
	Phone          string `json:"telephone_number"`
}

type apiTaxonomy struct {
	Code    string `json:"code"`
	Desc    string `json:"desc"`
	Primary bool   `json:"primary"`
}

// SearchByName queries the NPPES NPI Registry for individual providers matching
// the given first/last name. An optional state (2-letter code) narrows results.
// Returns up to limit matching providers.
func SearchByName(ctx context.Context, firstName, lastName, state string, limit int) ([]*ProviderInfo, error) {
	q := url.Values{}
	q.Set("enumeration_type", "NPI-1")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("first_name", firstName)
	q.Set("last_name", lastName)
	if state != "" {
		q.Set("state", state)
	}
	u := registryURL + "&" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying NPI registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NPI registry returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing NPI registry response: %w", err)
	}

	if apiResp.ResultCount == 0 || len(apiResp.Results) == 0 {
		return nil, nil
	}

	results := make([]*ProviderInfo, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		results = append(results, resultToProviderInfo(r))
	}
	return results, nil
}

func resultToProviderInfo(r apiResult) *ProviderInfo {
	npiNum, _ := strconv.ParseInt(r.Number, 10, 64)
	info := &ProviderInfo{
		NPI:        npiNum,
		Name:       formatIndividualName(r.Basic),
		Credential: cleanField(r.Basic.Credential),
		Status:     r.Basic.Status,
	}

	// Primary taxonomy (specialty)
	for _, t := range r.Taxonomies {
		if t.Primary {
			info.PrimaryTaxonomy = t.Desc
			break
		}
	}
	if info.PrimaryTaxonomy == "" && len(r.Taxonomies) > 0 {
		info.PrimaryTaxonomy = r.Taxonomies[0].Desc
	}

	// Practice location address
	for _, addr := range r.Addresses {
		if addr.AddressPurpose == "LOCATION" {
			info.PracticeAddress = formatAddress(addr)
			info.PracticePhone = formatPhone(addr.Phone)
			break
		}
	}
	if info.PracticeAddress == "" && len(r.Addresses) > 0 {
		info.PracticeAddress = formatAddress(r.Addresses[0])
		info.PracticePhone = formatPhone(r.Addresses[0].Phone)
	}

	return info
}

func formatIndividualName(b apiBasic) string {
	parts := []string{cleanField(b.LastName)}
	if first := cleanField(b.FirstName); first != "" {
		parts = append(parts, first)
	}
	name := strings.Join(parts, ", ")
	if middle := cleanField(b.MiddleName); middle != "" {
		name += " " + middle
	}
	return name
}

func formatAddress(a apiAddress) string {
	parts := []string{}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if a.State != "" {
		parts = append(parts, a.State)
	}
	loc := strings.Join(parts, ", ")
	if a.PostalCode != "" {
		zip := a.PostalCode
		if len(zip) > 5 {
			zip = zip[:5]
		}
		loc += " " + zip
	}
	return loc
}

func formatPhone(phone string) string {
	p := strings.ReplaceAll(phone, "-", "")
	p = strings.TrimSpace(p)
	if len(p) == 10 {
		return fmt.Sprintf("(%s) %s-%s", p[:3], p[3:6], p[6:])
	}
	return phone
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if s == "--" || s == "" {
		return ""
	}
	return s
}
