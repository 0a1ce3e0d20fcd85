package ingestion

// Stamp returns the metadata recorded with a sealed evidence record: the
// draft without forbidden fields or its own status, the method id, and the
// method defaults unless the draft overrides them.
func Stamp(m *MethodConfig, d Draft, channel SubmissionChannel) map[string]any {
	out := make(map[string]any, len(d)+5)
	for k, v := range d {
		if m.Forbids(k) || k == FieldStatus {
			continue
		}
		out[k] = v
	}
	out["ingestion_method"] = string(m.ID)
	if channel != "" {
		out[FieldSubmissionChannel] = string(channel)
	}
	stampDefault(out, d, FieldTrustLevel, m.Defaults.TrustLevel)
	stampDefault(out, d, FieldReviewStatus, m.Defaults.ReviewStatus)
	stampDefault(out, d, FieldSourceSystem, m.Defaults.SourceSystem)
	return out
}

func stampDefault(out map[string]any, d Draft, key, def string) {
	if v := d.Text(key); v != "" {
		out[key] = v
		return
	}
	out[key] = def
}

// IdempotencyKey returns the draft value of the method's enforced
// idempotency field, or "" when the method does not enforce one.
func IdempotencyKey(m *MethodConfig, d Draft) string {
	if m.Idempotency == nil || !m.Idempotency.Enforced {
		return ""
	}
	return d.Text(m.Idempotency.Key)
}
