package events

// Reload names the datasets a dashboard should fetch again after a
// change event. Reloads are wholesale, not incremental: the consumer
// re-reads everything the event touches.
type Reload struct {
	Missions      bool
	Beneficiaries bool
	Invoices      bool
	Stats         bool
}

func (r Reload) Any() bool {
	return r.Missions || r.Beneficiaries || r.Invoices || r.Stats
}

// Dispatch maps an event type to its reload set. Unrecognized types map
// to the zero Reload and are ignored by consumers.
func Dispatch(eventType string) Reload {
	switch eventType {
	case TypeMissionCreated, TypeMissionUpdated, TypeMissionDeleted:
		return Reload{Missions: true, Beneficiaries: true, Invoices: true, Stats: true}
	case TypeInvoiceUpdated:
		return Reload{Invoices: true, Stats: true}
	default:
		return Reload{}
	}
}
