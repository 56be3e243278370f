package events

import "testing"

func TestDispatch(t *testing.T) {
	tests := []struct {
		eventType string
		want      Reload
	}{
		{TypeMissionCreated, Reload{Missions: true, Beneficiaries: true, Invoices: true, Stats: true}},
		{TypeMissionUpdated, Reload{Missions: true, Beneficiaries: true, Invoices: true, Stats: true}},
		{TypeMissionDeleted, Reload{Missions: true, Beneficiaries: true, Invoices: true, Stats: true}},
		{TypeInvoiceUpdated, Reload{Invoices: true, Stats: true}},

		// unrecognized types are ignored
		{"beneficiary.updated", Reload{}},
		{"", Reload{}},
		{"mission", Reload{}},
	}

	for _, tt := range tests {
		if got := Dispatch(tt.eventType); got != tt.want {
			t.Errorf("Dispatch(%q) = %+v, want %+v", tt.eventType, got, tt.want)
		}
	}
}

func TestReloadAny(t *testing.T) {
	if (Reload{}).Any() {
		t.Error("zero Reload should report false")
	}
	if !(Reload{Stats: true}).Any() {
		t.Error("non-zero Reload should report true")
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()

	idA, chA := hub.Subscribe()
	_, chB := hub.Subscribe()

	msg, err := NewMessage(TypeMissionCreated, map[string]string{"id": "m-1"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	hub.Publish(msg)

	for _, ch := range []<-chan Message{chA, chB} {
		select {
		case got := <-ch:
			if got.Type != TypeMissionCreated {
				t.Errorf("got type %q, want %q", got.Type, TypeMissionCreated)
			}
		default:
			t.Fatal("subscriber did not receive the published message")
		}
	}

	hub.Unsubscribe(idA)
	if _, open := <-chA; open {
		t.Error("unsubscribed channel should be closed")
	}
	if hub.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount = %d, want 1", hub.SubscriberCount())
	}
}
