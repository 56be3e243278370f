package web

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"tutelliv/internal/client"
	"tutelliv/internal/utils"
	"tutelliv/pkg/types"

	"github.com/google/uuid"
)

// userMessage flattens an API error into the string the banner shows.
func userMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return "Connexion au serveur impossible"
}

type missionForm struct {
	BeneficiaryID  string            `form:"beneficiary_id"`
	Categories     []string          `form:"categories"`
	Comments       map[string]string `form:"comments"`
	GeneralComment string            `form:"general_comment"`
}

func (s *Service) missionFromForm(r *http.Request) (*types.Mission, string) {
	if err := r.ParseForm(); err != nil {
		return &types.Mission{}, "Formulaire invalide"
	}

	var form missionForm
	if err := decoder.Decode(&form, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode mission form")
		return &types.Mission{}, "Formulaire invalide"
	}

	mission := &types.Mission{
		BeneficiaryID: form.BeneficiaryID,
		Status:        types.MissionStatusPending,
	}

	for _, raw := range form.Categories {
		category := types.MissionCategory(raw)
		if !types.ValidCategory(category) {
			return mission, "Catégorie inconnue: " + raw
		}
		mission.Categories = append(mission.Categories, category)
	}

	for raw, comment := range form.Comments {
		comment = strings.TrimSpace(comment)
		if comment == "" {
			continue
		}
		category := types.MissionCategory(raw)
		if !types.ValidCategory(category) {
			continue
		}
		if mission.CommentsByCategory == nil {
			mission.CommentsByCategory = make(map[types.MissionCategory]string)
		}
		mission.CommentsByCategory[category] = comment
	}

	if comment := strings.TrimSpace(form.GeneralComment); comment != "" {
		mission.GeneralComment = &comment
	}

	if mission.BeneficiaryID == "" {
		return mission, "Un bénéficiaire est requis"
	}
	if len(mission.Categories) == 0 {
		return mission, "Au moins une catégorie est requise"
	}

	return mission, ""
}

const maxPhotoSize = 10 << 20

func (s *Service) handlePostBeneficiary(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		redirectWithError(w, r, "/beneficiaries/new", "Formulaire invalide")
		return
	}

	beneficiary := &types.Beneficiary{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Address:   strings.TrimSpace(r.FormValue("address")),
		IsActive:  true,
	}
	if v := strings.TrimSpace(r.FormValue("city")); v != "" {
		beneficiary.City = utils.StringPtr(v)
	}
	if v := strings.TrimSpace(r.FormValue("postal_code")); v != "" {
		beneficiary.PostalCode = utils.StringPtr(v)
	}
	if v := strings.TrimSpace(r.FormValue("phone")); v != "" {
		beneficiary.Phone = utils.StringPtr(v)
	}

	if beneficiary.FirstName == "" || beneficiary.LastName == "" {
		redirectWithError(w, r, "/beneficiaries/new", "Nom et prénom sont requis")
		return
	}
	if beneficiary.Address == "" {
		redirectWithError(w, r, "/beneficiaries/new", "L'adresse est requise")
		return
	}

	photoURL, photoKey := s.uploadPhoto(r)
	if photoURL != "" {
		beneficiary.PhotoURL = utils.StringPtr(photoURL)
	}

	created, err := s.api.WithToken(session.Token).CreateBeneficiary(r.Context(), beneficiary)
	if err != nil {
		// the photo is orphaned if the record never existed
		if photoKey != "" {
			if err := s.photos.DeletePhoto(r.Context(), photoKey); err != nil {
				s.logger.WithError(err).WithField("key", photoKey).Warn("failed to delete orphaned photo")
			}
		}
		redirectWithError(w, r, "/beneficiaries/new", userMessage(err))
		return
	}

	s.refresher.Kick()
	redirectWithNotice(w, r, "/beneficiaries/"+created.ID, "Bénéficiaire créé")
}

// uploadPhoto stores an attached photo and returns its public URL and
// storage key. Missing file or unconfigured storage both mean no
// photo, not an error.
func (s *Service) uploadPhoto(r *http.Request) (string, string) {
	if s.photos == nil {
		return "", ""
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return "", ""
	}
	defer file.Close()

	key := "beneficiaries/" + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")

	if _, err := s.photos.UploadPhoto(r.Context(), key, file, contentType); err != nil {
		s.logger.WithError(err).Error("failed to upload beneficiary photo")
		return "", ""
	}

	return s.photos.URL(key), key
}
