package pipeline

import "fmt"

// StageMapping binds one raw "date entered" property to a display stage name.
type StageMapping struct {
	Field string
	Stage string
}

// StageCatalog is the ordered, immutable mapping from stage timestamp fields
// to display names. It is the single source of truth for what counts as a
// stage: properties outside the catalog never contribute timeline events.
// Insertion order doubles as the deterministic tie-break when two stages
// share a timestamp.
type StageCatalog struct {
	mappings []StageMapping
	byField  map[string]string
}

func NewStageCatalog(mappings []StageMapping) (*StageCatalog, error) {
	c := &StageCatalog{
		mappings: make([]StageMapping, 0, len(mappings)),
		byField:  make(map[string]string, len(mappings)),
	}
	for _, m := range mappings {
		if m.Field == "" || m.Stage == "" {
			return nil, fmt.Errorf("stage mapping requires both field and stage, got %+v", m)
		}
		if _, exists := c.byField[m.Field]; exists {
			return nil, fmt.Errorf("duplicate stage field %q", m.Field)
		}
		c.byField[m.Field] = m.Stage
		c.mappings = append(c.mappings, m)
	}
	return c, nil
}

// StageFor resolves a raw property name to its display stage name.
func (c *StageCatalog) StageFor(field string) (string, bool) {
	stage, ok := c.byField[field]
	return stage, ok
}

// Fields returns the raw property names in catalog order.
func (c *StageCatalog) Fields() []string {
	fields := make([]string, len(c.mappings))
	for i, m := range c.mappings {
		fields[i] = m.Field
	}
	return fields
}

// Stages returns the display names in catalog order. Duplicate display names
// are tolerated and reported once, at their first position.
func (c *StageCatalog) Stages() []string {
	seen := make(map[string]struct{}, len(c.mappings))
	stages := make([]string, 0, len(c.mappings))
	for _, m := range c.mappings {
		if _, ok := seen[m.Stage]; ok {
			continue
		}
		seen[m.Stage] = struct{}{}
		stages = append(stages, m.Stage)
	}
	return stages
}

// Mappings returns a copy of the catalog entries in order.
func (c *StageCatalog) Mappings() []StageMapping {
	out := make([]StageMapping, len(c.mappings))
	copy(out, c.mappings)
	return out
}

func (c *StageCatalog) Len() int {
	return len(c.mappings)
}

// DefaultCatalog is the HubSpot pipeline this service was built for. The
// hs_v2_date_entered_* properties record when a deal entered each stage;
// numeric identifiers are custom stages, the named ones are HubSpot defaults.
func DefaultCatalog() *StageCatalog {
	c, err := NewStageCatalog([]StageMapping{
		{Field: "hs_v2_date_entered_1091569281", Stage: "Sign-up"},
		{Field: "hs_v2_date_entered_1053523303", Stage: "Outreach done"},
		{Field: "hs_v2_date_entered_1053523302", Stage: "To reach out"},
		{Field: "hs_v2_date_entered_qualifiedtobuy", Stage: "Demo Booked"},
		{Field: "hs_v2_date_entered_presentationscheduled", Stage: "Demo Done"},
		{Field: "hs_v2_date_entered_appointmentscheduled", Stage: "Relevant Reply"},
		{Field: "hs_v2_date_entered_contractsent", Stage: "Customer Converted"},
		{Field: "hs_v2_date_entered_closedwon", Stage: "Closed Won"},
		{Field: "hs_v2_date_entered_1141834547", Stage: "Post-demo follow-up"},
		{Field: "hs_v2_date_entered_1053523301", Stage: "Follow-up done"},
		{Field: "hs_v2_date_entered_1158033067", Stage: "$$$$ follow-ups"},
		{Field: "hs_v2_date_entered_1155410330", Stage: "Active trial $$$$ #haisha"},
		{Field: "hs_v2_date_entered_202676095", Stage: "Junk"},
		{Field: "hs_v2_date_entered_981662285", Stage: "Not a good fit"},
		{Field: "hs_v2_date_entered_closedlost", Stage: "Closed Lost"},
		{Field: "hs_v2_date_entered_1053507879", Stage: "Churned"},
		{Field: "hs_v2_date_entered_1155516059", Stage: "PoC not right but company relevant"},
		{Field: "hs_v2_date_entered_1120008054", Stage: "Timing not right"},
		{Field: "hs_v2_date_entered_202676096", Stage: "No Show"},
		{Field: "hs_v2_date_entered_999971918", Stage: "Cold call done"},
	})
	if err != nil {
		panic(err)
	}
	return c
}
