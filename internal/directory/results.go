package directory

// ResultSet holds the current search text, its results and the picked
// profile. Every Begin issues a new sequence number and only the response
// carrying the latest one is accepted, so a slow earlier lookup can never
// overwrite a later one.
type ResultSet struct {
	Query    string    `json:"query"`
	Results  []Profile `json:"results"`
	Selected *Profile  `json:"selected,omitempty"`

	issued uint64
}

// Begin records query and issues a sequence number for its lookup. It
// reports false when the query is too short; results are then cleared and
// no lookup should be made.
func (rs *ResultSet) Begin(query string) (uint64, bool) {
	rs.issued++
	rs.Query = query
	if !Searchable(query) {
		rs.Results = nil
		return rs.issued, false
	}
	return rs.issued, true
}

// Deliver stores profiles as the results of lookup seq. Responses for any
// sequence other than the latest issued are discarded.
func (rs *ResultSet) Deliver(seq uint64, profiles []Profile) bool {
	if seq != rs.issued {
		return false
	}
	rs.Results = profiles
	return true
}

// Select picks the profile with id from the current results
func (rs *ResultSet) Select(id string) (Profile, bool) {
	for _, p := range rs.Results {
		if p.ID == id {
			picked := p
			rs.Selected = &picked
			return picked, true
		}
	}
	return Profile{}, false
}

// Reset clears query, results and selection and invalidates any lookup in flight
func (rs *ResultSet) Reset() {
	rs.issued++
	rs.Query = ""
	rs.Results = nil
	rs.Selected = nil
}
