package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pixelvault/arttoys-backend/api/responses"
	"github.com/pixelvault/arttoys-backend/api/validators"
	catalogsvc "github.com/pixelvault/arttoys-backend/internal/catalog"
	pkgerrors "github.com/pixelvault/arttoys-backend/pkg/errors"
	"github.com/pixelvault/arttoys-backend/pkg/logger"
)

const arrivalDateLayout = "2006-01-02"

// CreateArtToy handles catalog listing creation.
func CreateArtToy(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createArtToyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		toy, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toy)
	}
}

// GetArtToy returns one catalog listing by id.
func GetArtToy(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			// An id that cannot name a toy reads the same as a toy that
			// does not exist.
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "art toy not found"))
			return
		}

		toy, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toy)
	}
}

// ListArtToys returns the full catalog, newest first.
func ListArtToys(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		toys, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, toys)
	}
}

// UpdateArtToy applies a partial update to a catalog listing.
func UpdateArtToy(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateArtToyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		toy, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toy)
	}
}

// DeleteArtToy removes a catalog listing with no live orders.
func DeleteArtToy(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "art toy deleted")
	}
}

type createArtToyRequest struct {
	SKU            string `json:"sku" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description" validate:"required"`
	ArrivalDate    string `json:"arrivalDate" validate:"required"`
	AvailableQuota int    `json:"availableQuota" validate:"gte=0"`
	PosterPicture  string `json:"posterPicture" validate:"required,url"`
}

func (r createArtToyRequest) toCreateInput() (catalogsvc.CreateArtToyInput, error) {
	arrival, err := parseArrivalDate(r.ArrivalDate)
	if err != nil {
		return catalogsvc.CreateArtToyInput{}, err
	}
	return catalogsvc.CreateArtToyInput{
		SKU:            r.SKU,
		Name:           r.Name,
		Description:    r.Description,
		ArrivalDate:    arrival,
		AvailableQuota: r.AvailableQuota,
		PosterPicture:  r.PosterPicture,
	}, nil
}

type updateArtToyRequest struct {
	SKU            *string `json:"sku,omitempty"`
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	ArrivalDate    *string `json:"arrivalDate,omitempty"`
	AvailableQuota *int    `json:"availableQuota,omitempty" validate:"omitempty,gte=0"`
	PosterPicture  *string `json:"posterPicture,omitempty" validate:"omitempty,url"`
}

func (r updateArtToyRequest) toUpdateInput() (catalogsvc.UpdateArtToyInput, error) {
	input := catalogsvc.UpdateArtToyInput{
		SKU:            r.SKU,
		Name:           r.Name,
		Description:    r.Description,
		AvailableQuota: r.AvailableQuota,
		PosterPicture:  r.PosterPicture,
	}
	if r.ArrivalDate != nil {
		arrival, err := parseArrivalDate(*r.ArrivalDate)
		if err != nil {
			return catalogsvc.UpdateArtToyInput{}, err
		}
		input.ArrivalDate = &arrival
	}
	return input, nil
}

func parseArrivalDate(value string) (time.Time, error) {
	arrival, err := time.Parse(arrivalDateLayout, value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arrivalDate must use YYYY-MM-DD")
	}
	return arrival, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
