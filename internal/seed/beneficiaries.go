package seed

import (
	"context"
	"fmt"
	"math/rand"

	"tutelliv/internal/store"
	"tutelliv/internal/utils"
	"tutelliv/pkg/types"
)

type demoBeneficiarySeed struct {
	FirstName  string
	LastName   string
	Address    string
	City       string
	PostalCode string
	Phone      string
}

var demoBeneficiaries = []demoBeneficiarySeed{
	{FirstName: "Jeanne", LastName: "Martin", Address: "12 rue des Lilas", City: "Lyon", PostalCode: "69003", Phone: "04 72 00 11 22"},
	{FirstName: "Robert", LastName: "Lefevre", Address: "3 avenue Jean Jaurès", City: "Villeurbanne", PostalCode: "69100", Phone: "04 78 33 44 55"},
	{FirstName: "Simone", LastName: "Girard", Address: "27 boulevard des Brotteaux", City: "Lyon", PostalCode: "69006"},
	{FirstName: "Henri", LastName: "Moreau", Address: "8 place Carnot", City: "Lyon", PostalCode: "69002", Phone: "04 72 66 77 88"},
	{FirstName: "Yvette", LastName: "Roux", Address: "41 rue de la République", City: "Caluire-et-Cuire", PostalCode: "69300"},
}

var demoMissionComments = []string{
	"Sonner deux fois, attendre devant la porte.",
	"Prévenir la gardienne en arrivant.",
	"Déposer les courses dans la cuisine.",
	"Le bénéficiaire est malentendant, parler fort.",
}

// SeedDemoBeneficiaries inserts the demo beneficiaries plus a handful of
// missions in mixed statuses so the dashboard has something to show.
// Beneficiaries are matched by full name, so re-running is safe.
func SeedDemoBeneficiaries(ctx context.Context, beneficiaryRepo *store.BeneficiaryRepository, missionRepo *store.MissionRepository, invoiceRepo *store.InvoiceRepository) error {
	existing, err := beneficiaryRepo.Beneficiaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list beneficiaries: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, b := range existing {
		known[b.FullName()] = true
	}

	seeded := 0
	for _, demo := range demoBeneficiaries {
		if known[demo.FirstName+" "+demo.LastName] {
			continue
		}

		beneficiary := &types.Beneficiary{
			FirstName:  demo.FirstName,
			LastName:   demo.LastName,
			Address:    demo.Address,
			City:       utils.StringPtr(demo.City),
			PostalCode: utils.StringPtr(demo.PostalCode),
			IsActive:   true,
		}
		if demo.Phone != "" {
			beneficiary.Phone = utils.StringPtr(demo.Phone)
		}

		if err := beneficiaryRepo.CreateBeneficiary(ctx, beneficiary); err != nil {
			return fmt.Errorf("failed to create beneficiary %s: %w", beneficiary.FullName(), err)
		}
		seeded++

		if err := seedMissionFor(ctx, missionRepo, invoiceRepo, beneficiary.ID); err != nil {
			return err
		}
	}

	fmt.Printf("Demo beneficiaries seeded: %d created\n", seeded)
	return nil
}

func seedMissionFor(ctx context.Context, missionRepo *store.MissionRepository, invoiceRepo *store.InvoiceRepository, beneficiaryID string) error {
	categories := []types.MissionCategory{types.CategoryFood}
	if rand.Intn(2) == 0 {
		categories = append(categories, types.CategoryHygiene)
	}

	statuses := []types.MissionStatus{
		types.MissionStatusPending,
		types.MissionStatusPending,
		types.MissionStatusInProgress,
		types.MissionStatusDelivered,
	}
	status := statuses[rand.Intn(len(statuses))]

	mission := &types.Mission{
		BeneficiaryID:  beneficiaryID,
		Categories:     categories,
		GeneralComment: utils.StringPtr(demoMissionComments[rand.Intn(len(demoMissionComments))]),
		Status:         status,
	}
	if err := missionRepo.CreateMission(ctx, mission); err != nil {
		return fmt.Errorf("failed to create demo mission: %w", err)
	}

	invoice := &types.Invoice{
		MissionID: mission.ID,
		Status:    types.InvoiceStatusEditing,
	}
	if status == types.MissionStatusDelivered {
		invoice.Status = types.InvoiceStatusPending
		invoice.Amount = float64(rand.Intn(8000)+500) / 100
		invoice.DeliveryFee = utils.Float64Ptr(5)
	}
	if err := invoiceRepo.CreateInvoice(ctx, invoice); err != nil {
		return fmt.Errorf("failed to create demo invoice: %w", err)
	}

	return nil
}
