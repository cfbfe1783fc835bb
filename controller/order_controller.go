package controller

import (
	"net/http"

	"smarthotel/model"
	"smarthotel/service"
	"smarthotel/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *service.OrderService
}

func NewOrderController(orders *service.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// PlaceOrder lets a customer order for themselves. Admins may order on behalf
// of any customer.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req service.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order payload")
		return
	}

	callerID, _ := utils.CurrentUserID(c)
	if utils.CurrentRole(c) == string(model.RoleCustomer) {
		if req.CustomerID == 0 {
			req.CustomerID = callerID
		}
		if req.CustomerID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "customers can only place their own orders"})
			return
		}
	}

	orderID, err := oc.orders.PlaceOrder(requestContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Order placed successfully", gin.H{"order_id": orderID})
}

// PendingOrders serves the kitchen board, optionally narrowed with
// ?customer_id=.
func (oc *OrderController) PendingOrders(c *gin.Context) {
	var q struct {
		CustomerID uint `form:"customer_id" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "customer_id must be a positive number")
		return
	}
	var customerID *uint
	if q.CustomerID != 0 {
		customerID = &q.CustomerID
	}

	orders, err := oc.orders.ListActiveOrders(requestContext(c), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", orders)
}

func (oc *OrderController) AcceptOrder(c *gin.Context) {
	var req struct {
		OrderID uint `json:"order_id" form:"order_id" binding:"required"`
		ChefID  uint `json:"chef_id" form:"chef_id"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "order_id is required")
		return
	}

	callerID, _ := utils.CurrentUserID(c)
	if utils.CurrentRole(c) == string(model.RoleChef) {
		if req.ChefID == 0 {
			req.ChefID = callerID
		}
		if req.ChefID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "chefs can only accept orders for themselves"})
			return
		}
	}
	if req.ChefID == 0 {
		badRequest(c, "chef_id is required")
		return
	}

	if err := oc.orders.Accept(requestContext(c), req.OrderID, req.ChefID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Order accepted", gin.H{"order_id": req.OrderID, "status": model.OrderInProgress})
}

type orderIDRequest struct {
	OrderID uint `json:"order_id" form:"order_id" binding:"required"`
}

func (oc *OrderController) RejectOrder(c *gin.Context) {
	var req orderIDRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "order_id is required")
		return
	}
	if err := oc.orders.Reject(requestContext(c), req.OrderID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Order rejected", gin.H{"order_id": req.OrderID, "status": model.OrderRejected})
}

func (oc *OrderController) CompleteOrder(c *gin.Context) {
	var req orderIDRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "order_id is required")
		return
	}
	if err := oc.orders.Complete(requestContext(c), req.OrderID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Order completed", gin.H{"order_id": req.OrderID, "status": model.OrderCompleted})
}

// CustomerOrders serves the customer's order tracking screen.
func (oc *OrderController) CustomerOrders(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" form:"user_id" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "user_id is required")
		return
	}
	if !canSeeCustomer(c, req.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "cannot view another customer's orders"})
		return
	}

	orders, err := oc.orders.ListCustomerOrders(requestContext(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := oc.orders.GetOrder(requestContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canSeeCustomer(c, order.CustomerID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
		return
	}
	respondOK(c, http.StatusOK, "", order)
}

// canSeeCustomer allows staff everywhere and customers only on themselves.
func canSeeCustomer(c *gin.Context, customerID uint) bool {
	if utils.CurrentRole(c) != string(model.RoleCustomer) {
		return true
	}
	callerID, ok := utils.CurrentUserID(c)
	return ok && callerID == customerID
}
