package handlers

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
)

type EstimateHandler struct {
	estimator     *services.Estimator
	tokens        *entities.TokenRegistry
	wrappedNative common.Address
}

func NewEstimateHandler(estimator *services.Estimator, tokens *entities.TokenRegistry, wrappedNative common.Address) *EstimateHandler {
	return &EstimateHandler{
		estimator:     estimator,
		tokens:        tokens,
		wrappedNative: wrappedNative,
	}
}

type EstimateResponse struct {
	Status       string   `json:"status"`
	Reason       string   `json:"reason,omitempty"`
	Path         []string `json:"path"`
	AmountIn     string   `json:"amountIn"`
	OutputAmount string   `json:"outputAmount"`
	SafetyFactor float64  `json:"safetyFactor"`
	Router       string   `json:"router,omitempty"`
}

// GetEstimate handles GET /api/v1/estimate?path=a,b,c&amountIn=
func (h *EstimateHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	rawPath := r.URL.Query().Get("path")
	amountStr := r.URL.Query().Get("amountIn")
	if rawPath == "" || amountStr == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "path and amountIn are required")
		return
	}

	var path entities.Path
	for _, ref := range strings.Split(rawPath, ",") {
		token, err := services.ResolveToken(h.tokens, ref)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_path", err.Error())
			return
		}
		path = append(path, token.RoutingAddress(h.wrappedNative))
	}
	if err := path.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_path", err.Error())
		return
	}

	// amountIn is in smallest units
	amountIn, ok := new(big.Int).SetString(amountStr, 10)
	if !ok || amountIn.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amountIn must be a positive integer")
		return
	}

	est := h.estimator.ConservativeEstimate(r.Context(), path, amountIn)

	resp := EstimateResponse{
		Status:       string(est.Status),
		Reason:       est.Reason,
		Path:         path.Strings(),
		AmountIn:     amountIn.String(),
		OutputAmount: est.OutputAmount.String(),
		SafetyFactor: est.SafetyFactor,
	}
	if est.Status == entities.QuoteFound {
		resp.Router = est.RouterAddress.Hex()
	}
	writeJSON(w, http.StatusOK, resp)
}
