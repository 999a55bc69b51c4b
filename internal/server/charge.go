package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	gatewaydomain "github.com/sspkit/razorgate/internal/gateway/domain"
)

func (s *Server) Charge(c *gin.Context) {
	var req gatewaydomain.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.gatewaySvc.Charge(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Refund(c *gin.Context) {
	var req gatewaydomain.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.gatewaySvc.Refund(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Transaction(c *gin.Context) {
	id := c.Param("id")

	var cfg *gatewaydomain.ProviderConfig
	if raw := c.Query("provider_config"); raw != "" {
		cfg = &gatewaydomain.ProviderConfig{}
		if err := json.Unmarshal([]byte(raw), cfg); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.gatewaySvc.Transaction(c.Request.Context(), id, cfg)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) PaymentIntent(c *gin.Context) {
	var req gatewaydomain.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.gatewaySvc.PaymentIntent(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
