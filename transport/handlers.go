package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"orderservice/pkg/domain/model"
	"orderservice/pkg/domain/service"
)

type Handler struct {
	products service.ProductService
	orders   service.OrderService
}

func Router(products service.ProductService, orders service.OrderService) http.Handler {
	handler := &Handler{products: products, orders: orders}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	r.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/products", handler.getProducts).Methods(http.MethodGet)
	s.HandleFunc("/products", handler.createProduct).Methods(http.MethodPost)
	s.HandleFunc("/products/{id}", handler.updateProduct).Methods(http.MethodPut)
	s.HandleFunc("/products/{id}", handler.deleteProduct).Methods(http.MethodDelete)

	s.HandleFunc("/orders", handler.getOrders).Methods(http.MethodGet)
	s.HandleFunc("/orders", handler.createOrder).Methods(http.MethodPost)
	s.HandleFunc("/orders/{id}", handler.getOrderByID).Methods(http.MethodGet)
	s.HandleFunc("/orders/{id}", handler.updateOrder).Methods(http.MethodPut)
	s.HandleFunc("/orders/{id}", handler.deleteOrder).Methods(http.MethodDelete)

	return recoverMiddleware(logMiddleware(corsMiddleware(r)))
}

type productRequest struct {
	Name      string   `json:"name"`
	UnitPrice *float64 `json:"unitPrice"`
}

type productResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}

type orderItemRequest struct {
	ProductID int64    `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price"`
}

type orderRequest struct {
	OrderNumber string             `json:"orderNumber"`
	Status      string             `json:"status"`
	Items       []orderItemRequest `json:"items"`
}

type orderItemResponse struct {
	ID              int64   `json:"id"`
	OrderID         int64   `json:"order_id"`
	ProductID       int64   `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	UnitPriceAtTime float64 `json:"unit_price_at_time"`
}

type orderSummaryResponse struct {
	ID            int64     `json:"id"`
	OrderNumber   string    `json:"order_number"`
	OrderDate     time.Time `json:"order_date"`
	Status        string    `json:"status"`
	TotalProducts int       `json:"total_products"`
	FinalPrice    float64   `json:"final_price"`
}

type orderResponse struct {
	orderSummaryResponse
	Items []orderItemResponse `json:"items"`
}

func (h *Handler) getProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]productResponse, 0, len(products))
	for _, p := range products {
		response = append(response, productResponse{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var request productRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Name == "" || request.UnitPrice == nil {
		writeMessage(w, http.StatusBadRequest, "name and unitPrice are required")
		return
	}

	id, err := h.products.CreateProduct(r.Context(), request.Name, *request.UnitPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "product created", "id": id})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request productRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Name == "" || request.UnitPrice == nil {
		writeMessage(w, http.StatusBadRequest, "name and unitPrice are required")
		return
	}

	if err := h.products.UpdateProduct(r.Context(), id, request.Name, *request.UnitPrice); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "product updated"})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "product deleted"})
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]orderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, orderSummaryResponse{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			OrderDate:     o.OrderDate,
			Status:        string(o.Status),
			TotalProducts: o.TotalProducts,
			FinalPrice:    o.FinalPrice,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) getOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPriceAtTime: item.UnitPriceAtTime,
		})
	}
	writeJSON(w, http.StatusOK, orderResponse{
		orderSummaryResponse: orderSummaryResponse{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			OrderDate:     order.OrderDate,
			Status:        string(order.Status),
			TotalProducts: order.TotalProducts(),
			FinalPrice:    order.FinalPrice(),
		},
		Items: items,
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var request orderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := toServiceItems(request.Items)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.orders.CreateOrder(r.Context(), request.OrderNumber, items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "order created", "id": id})
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request orderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := toServiceItems(request.Items)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.orders.UpdateOrder(r.Context(), id, request.OrderNumber, model.OrderStatus(request.Status), items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "order updated"})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "order deleted"})
}

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "pong")
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusNotFound, "route not found")
}

func toServiceItems(items []orderItemRequest) ([]service.NewOrderItem, error) {
	result := make([]service.NewOrderItem, 0, len(items))
	for _, item := range items {
		if item.Price == nil {
			return nil, errors.New("each item must carry a price snapshot")
		}
		result = append(result, service.NewOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     *item.Price,
		})
	}
	return result, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeError maps domain failures onto status codes: validation 400, not
// found 404, referential conflict 409, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrProductNotFound), errors.Is(err, model.ErrOrderNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrProductInUse):
		writeMessage(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "internal server error",
			"error":   err.Error(),
		})
	}
}

func isValidationError(err error) bool {
	validation := []error{
		service.ErrProductNameRequired,
		service.ErrOrderNumberRequired,
		service.ErrOrderIsEmpty,
		service.ErrInvalidQuantity,
		service.ErrInvalidProductRef,
		service.ErrInvalidStatus,
		service.ErrOrderCannotBeModified,
	}
	for _, candidate := range validation {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"message": message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("write response")
	}
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"requestId":  uuid.NewString(),
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}

func corsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func recoverMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("panic", rec).Error("handler panicked")
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"message": "internal server error",
					"error":   fmt.Sprint(rec),
				})
			}
		}()
		h.ServeHTTP(w, r)
	})
}
