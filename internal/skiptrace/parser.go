package skiptrace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"sold2move/internal/models"
)

// Result is a parsed provider response.
type Result struct {
	Homeowner models.Homeowner
	Success   bool
}

// source is the part of a payload one shape contributes to the merged record.
type source struct {
	name      *name
	emails    []emailEntry
	phones    []phoneEntry
	litigator bool
}

// extractor pulls a source out of one response shape.
type extractor func(*response) (source, bool)

// extractors are applied in order. Earlier shapes win on scalar fields.
var extractors = []extractor{
	skipTraceShape,
	propertyLookupShape,
}

func skipTraceShape(r *response) (source, bool) {
	if r.Results == nil || len(r.Results.Persons) == 0 {
		return source{}, false
	}
	p := r.Results.Persons[0]
	return source{
		name:      p.Name,
		emails:    concatEmails(p.Emails, p.EnrichedEmails),
		phones:    p.PhoneNumbers,
		litigator: bool(p.Litigator || p.DNC.TCPA),
	}, true
}

func propertyLookupShape(r *response) (source, bool) {
	o := r.Owner
	if r.Results != nil && r.Results.Owner != nil {
		o = r.Results.Owner
	}
	if o == nil {
		return source{}, false
	}
	src := source{
		emails:    concatEmails(o.Emails, o.EnrichedEmails),
		phones:    o.PhoneNumbers,
		litigator: bool(o.Litigator || o.DNC.TCPA),
	}
	if len(o.Names) > 0 {
		src.name = &o.Names[0]
	}
	return src, true
}

func concatEmails(a, b []emailEntry) []emailEntry {
	out := make([]emailEntry, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Parse normalizes a raw provider payload into a homeowner record.
func Parse(raw []byte) (*Result, error) {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding provider response: %w", err)
	}

	var h models.Homeowner
	seenEmail := make(map[string]bool)
	seenPhone := make(map[string]bool)

	for _, extract := range extractors {
		src, ok := extract(&resp)
		if !ok {
			continue
		}
		if src.name != nil {
			mergeName(&h, src.name)
		}
		for _, e := range src.emails {
			if e.Email == "" || seenEmail[e.Email] {
				continue
			}
			seenEmail[e.Email] = true
			h.Emails = append(h.Emails, models.Email{Address: e.Email, Verified: bool(e.Tested)})
		}
		for _, p := range src.phones {
			number := string(p.Number)
			if number == "" || seenPhone[number] {
				continue
			}
			seenPhone[number] = true
			h.PhoneNumbers = append(h.PhoneNumbers, models.Phone{
				Number:            number,
				Type:              string(p.Type),
				Carrier:           string(p.Carrier),
				ConfidenceScore:   int(p.Score),
				Reachable:         bool(p.Reachable),
				DoNotCall:         bool(p.DNC),
				Verified:          bool(p.Tested),
				FirstReportedDate: string(p.FirstReportedDate),
				LastReportedDate:  string(p.LastReportedDate),
			})
		}
		h.IsLitigator = h.IsLitigator || src.litigator
	}

	sort.SliceStable(h.PhoneNumbers, func(i, j int) bool {
		return h.PhoneNumbers[i].ConfidenceScore > h.PhoneNumbers[j].ConfidenceScore
	})
	for _, p := range h.PhoneNumbers {
		if p.DoNotCall {
			h.HasDoNotCallPhone = true
			break
		}
	}
	h.EnsureSlices()

	return &Result{
		Homeowner: h,
		Success:   succeeded(&resp, &h),
	}, nil
}

// mergeName fills only the name fields that are still unset.
func mergeName(h *models.Homeowner, n *name) {
	first := strings.TrimSpace(n.First)
	last := strings.TrimSpace(n.Last)
	full := strings.TrimSpace(n.Full)
	if full == "" {
		full = strings.TrimSpace(first + " " + last)
	}

	if h.FirstName == nil && first != "" {
		h.FirstName = &first
	}
	if h.LastName == nil && last != "" {
		h.LastName = &last
	}
	if h.FullName == nil && full != "" {
		h.FullName = &full
	}
}

// succeeded ORs three independent signals. The provider's match count alone has
// been observed to report zero for real matches.
func succeeded(r *response, h *models.Homeowner) bool {
	if r.Results != nil {
		if r.Results.Meta.Results.MatchCount > 0 || len(r.Results.Persons) > 0 {
			return true
		}
	}
	return h.HasContactData()
}
