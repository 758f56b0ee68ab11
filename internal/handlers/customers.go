package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/models"
)

type addressPayload struct {
	ID         uint   `json:"id"`
	ZIP        string `json:"zip"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	Primary    bool   `json:"primary"`
}

type customerRequest struct {
	Name         string           `json:"name"`
	Nickname     string           `json:"nickname"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	CPF          string           `json:"cpf"`
	BirthDate    *time.Time       `json:"birth_date"`
	Intolerances string           `json:"intolerances"`
	Preferences  string           `json:"preferences"`
	Notes        string           `json:"notes"`
	Active       *bool            `json:"active"`
	Addresses    []addressPayload `json:"addresses"`
}

type customerResponse struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	Nickname     string           `json:"nickname"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	CPF          string           `json:"cpf"`
	BirthDate    *time.Time       `json:"birth_date"`
	Intolerances string           `json:"intolerances"`
	Preferences  string           `json:"preferences"`
	Notes        string           `json:"notes"`
	Active       bool             `json:"active"`
	LastContact  *time.Time       `json:"last_contact"`
	Addresses    []addressPayload `json:"addresses"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CustomerResource handles REST-style interactions for customer records and
// their delivery addresses.
func CustomerResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "customer request missing authenticated user")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/customers")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listCustomers(w, r)
		case http.MethodPost:
			createCustomer(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid customer identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	customerID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showCustomer(w, r, customerID)
	case http.MethodPut:
		updateCustomer(w, r, customerID)
	case http.MethodDelete:
		deleteCustomer(w, r, customerID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var customers []models.Customer

	query := database.WithContext(ctx).Preload("Addresses").Order("name asc")
	if r.URL.Query().Get("active") == "1" {
		query = query.Where("active = ?", true)
	}

	if err := query.Find(&customers).Error; err != nil {
		applog.Error(ctx, "failed to list customers", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load customers")
		return
	}

	responses := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, projectCustomer(customer))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showCustomer(w http.ResponseWriter, r *http.Request, customerID uint) {
	customer, ok := loadCustomer(w, r, customerID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectCustomer(customer))
}

func createCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload customerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid customer payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	customer := models.Customer{
		Name:         name,
		Nickname:     strings.TrimSpace(payload.Nickname),
		Email:        strings.TrimSpace(payload.Email),
		Phone:        strings.TrimSpace(payload.Phone),
		CPF:          strings.TrimSpace(payload.CPF),
		BirthDate:    payload.BirthDate,
		Intolerances: strings.TrimSpace(payload.Intolerances),
		Preferences:  strings.TrimSpace(payload.Preferences),
		Notes:        strings.TrimSpace(payload.Notes),
		Active:       true,
	}
	if payload.Active != nil {
		customer.Active = *payload.Active
	}
	customer.Addresses = buildAddresses(payload.Addresses)

	if err := database.WithContext(ctx).Create(&customer).Error; err != nil {
		applog.Error(ctx, "failed to create customer", "error", err, "name", name)
		writeJSONError(w, http.StatusInternalServerError, "unable to create customer")
		return
	}

	writeJSON(w, http.StatusCreated, projectCustomer(customer))
}

func updateCustomer(w http.ResponseWriter, r *http.Request, customerID uint) {
	ctx := r.Context()
	customer, ok := loadCustomer(w, r, customerID)
	if !ok {
		return
	}

	var payload customerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid customer update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	updates["nickname"] = strings.TrimSpace(payload.Nickname)
	updates["email"] = strings.TrimSpace(payload.Email)
	updates["phone"] = strings.TrimSpace(payload.Phone)
	updates["cpf"] = strings.TrimSpace(payload.CPF)
	updates["intolerances"] = strings.TrimSpace(payload.Intolerances)
	updates["preferences"] = strings.TrimSpace(payload.Preferences)
	updates["notes"] = strings.TrimSpace(payload.Notes)
	if payload.BirthDate != nil {
		updates["birth_date"] = payload.BirthDate
	}
	if payload.Active != nil {
		updates["active"] = *payload.Active
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).Updates(updates).Error; err != nil {
			return err
		}
		if payload.Addresses == nil {
			return nil
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Address{}).Error; err != nil {
			return err
		}
		addresses := buildAddresses(payload.Addresses)
		for i := range addresses {
			addresses[i].CustomerID = customerID
		}
		if len(addresses) == 0 {
			return nil
		}
		return tx.Create(&addresses).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to update customer", "error", err, "id", customerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update customer")
		return
	}

	customer, ok = loadCustomer(w, r, customerID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectCustomer(customer))
}

func deleteCustomer(w http.ResponseWriter, r *http.Request, customerID uint) {
	ctx := r.Context()
	customer, ok := loadCustomer(w, r, customerID)
	if !ok {
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Address{}).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete customer", "error", err, "id", customerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete customer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func loadCustomer(w http.ResponseWriter, r *http.Request, customerID uint) (models.Customer, bool) {
	ctx := r.Context()
	var customer models.Customer
	if err := database.WithContext(ctx).Preload("Addresses").First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return models.Customer{}, false
		}
		applog.Error(ctx, "failed to load customer", "error", err, "id", customerID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load customer")
		return models.Customer{}, false
	}
	return customer, true
}

// buildAddresses sanitizes the submitted addresses and keeps at most one
// marked primary. When several are flagged the first wins.
func buildAddresses(payloads []addressPayload) []models.Address {
	addresses := make([]models.Address, 0, len(payloads))
	primarySeen := false
	for _, entry := range payloads {
		address := models.Address{
			ZIP:        strings.TrimSpace(entry.ZIP),
			Street:     strings.TrimSpace(entry.Street),
			Number:     strings.TrimSpace(entry.Number),
			Complement: strings.TrimSpace(entry.Complement),
			District:   strings.TrimSpace(entry.District),
			City:       strings.TrimSpace(entry.City),
			State:      strings.ToUpper(strings.TrimSpace(entry.State)),
		}
		if entry.Primary && !primarySeen {
			address.Primary = true
			primarySeen = true
		}
		addresses = append(addresses, address)
	}
	return addresses
}

func projectCustomer(customer models.Customer) customerResponse {
	addresses := make([]addressPayload, 0, len(customer.Addresses))
	for _, address := range customer.Addresses {
		addresses = append(addresses, addressPayload{
			ID:         address.ID,
			ZIP:        address.ZIP,
			Street:     address.Street,
			Number:     address.Number,
			Complement: address.Complement,
			District:   address.District,
			City:       address.City,
			State:      address.State,
			Primary:    address.Primary,
		})
	}

	return customerResponse{
		ID:           customer.ID,
		Name:         customer.Name,
		Nickname:     customer.Nickname,
		Email:        customer.Email,
		Phone:        customer.Phone,
		CPF:          customer.CPF,
		BirthDate:    customer.BirthDate,
		Intolerances: customer.Intolerances,
		Preferences:  customer.Preferences,
		Notes:        customer.Notes,
		Active:       customer.Active,
		LastContact:  customer.LastContact,
		Addresses:    addresses,
		CreatedAt:    customer.CreatedAt,
		UpdatedAt:    customer.UpdatedAt,
	}
}
