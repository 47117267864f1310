package handlers

import (
	"net/http"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

// TokenHandler serves the configured token list
type TokenHandler struct {
	tokens *entities.TokenRegistry
}

func NewTokenHandler(tokens *entities.TokenRegistry) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

type TokenListResponse struct {
	Tokens []entities.Token `json:"tokens"`
	Count  int              `json:"count"`
}

// ListTokens handles GET /api/v1/tokens
func (h *TokenHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TokenListResponse{
		Tokens: h.tokens.GetAll(),
		Count:  h.tokens.Count(),
	})
}
