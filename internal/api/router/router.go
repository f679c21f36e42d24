package router

import (
	"github.com/RoyceAzure/lab/elshop/internal/api/handler"
	m "github.com/RoyceAzure/lab/elshop/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Handlers struct {
	Checkout *handler.CheckoutHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
}

func SetupRouter(h Handlers, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.ListProducts)
			r.Get("/{productID}", h.Product.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productID}", h.Cart.SetQuantity)
			r.Delete("/items/{productID}", h.Cart.RemoveItem)
		})

		r.Post("/checkout", h.Checkout.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Order.ListOrders)
			r.Get("/{orderID}", h.Order.GetOrder)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", h.Customer.CreateCustomer)
			r.Get("/{customerID}", h.Customer.GetCustomer)
			r.Delete("/{customerID}", h.Customer.DeleteCustomer)
			r.Get("/{customerID}/addresses", h.Customer.ListAddresses)
		})
	})

	return r
}
