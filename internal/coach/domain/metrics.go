package domain

// MetricKey identifies a percent-based KPI in the closed metric catalog.
type MetricKey string

const (
	MetricContactRate      MetricKey = "contact_rate_pct"
	MetricAppointmentRate  MetricKey = "appointment_rate_pct"
	MetricSignedRate       MetricKey = "signed_rate_pct"
	MetricShowRate         MetricKey = "show_rate_pct"
	MetricCollectionRate   MetricKey = "collection_rate_pct"
	MetricRetentionRate    MetricKey = "retention_rate_pct"
	MetricMessageReplyRate MetricKey = "message_reply_rate_pct"
)

// metricCatalog declares which roles each KPI applies to. Assigning a metric
// to a role outside its applicability set is a validation failure, never a
// silent accept.
var metricCatalog = map[MetricKey][]Role{
	MetricContactRate:      {RoleTelesales},
	MetricAppointmentRate:  {RoleTelesales, RoleDirectPage},
	MetricSignedRate:       {RoleTelesales},
	MetricShowRate:         {RoleDirectPage, RoleBranchManager},
	MetricCollectionRate:   {RoleBranchManager},
	MetricRetentionRate:    {RoleBranchManager},
	MetricMessageReplyRate: {RoleDirectPage},
}

// IsValid reports whether the metric exists in the catalog.
func (m MetricKey) IsValid() bool {
	_, ok := metricCatalog[m]
	return ok
}

// AppliesTo reports whether the metric is declared applicable to the role.
func (m MetricKey) AppliesTo(role Role) bool {
	for _, r := range metricCatalog[m] {
		if r == role {
			return true
		}
	}
	return false
}

// MetricKeys returns the catalog's keys. Used by validation messages and tests.
func MetricKeys() []MetricKey {
	keys := make([]MetricKey, 0, len(metricCatalog))
	for k := range metricCatalog {
		keys = append(keys, k)
	}
	return keys
}
