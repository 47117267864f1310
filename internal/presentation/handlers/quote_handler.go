package handlers

import (
	"net/http"
	"strconv"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
)

// QuoteHandler handles quote requests
type QuoteHandler struct {
	quotes             *services.QuoteService
	tokens             *entities.TokenRegistry
	defaultSlippageBps uint64
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quotes *services.QuoteService, tokens *entities.TokenRegistry, defaultSlippageBps uint64) *QuoteHandler {
	return &QuoteHandler{
		quotes:             quotes,
		tokens:             tokens,
		defaultSlippageBps: defaultSlippageBps,
	}
}

// TokenRef identifies a token in responses
type TokenRef struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// QuoteResponse represents a quote response. Amounts are in smallest units,
// the *Formatted fields in human units.
type QuoteResponse struct {
	Status           string   `json:"status"`
	Reason           string   `json:"reason,omitempty"`
	FromToken        TokenRef `json:"fromToken"`
	ToToken          TokenRef `json:"toToken"`
	AmountIn         string   `json:"amountIn"`
	OutputAmount     string   `json:"outputAmount"`
	OutputFormatted  string   `json:"outputFormatted"`
	MinAmountOut     string   `json:"minAmountOut,omitempty"`
	SlippageBps      uint64   `json:"slippageBps"`
	Path             []string `json:"path"`
	Router           string   `json:"router,omitempty"`
	RouteDescription string   `json:"routeDescription,omitempty"`
	PriceImpact      float64  `json:"priceImpact"`
	ExecutionPrice   float64  `json:"executionPrice"`
}

// GetQuote handles GET /api/v1/quote
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fromRef := q.Get("fromToken")
	toRef := q.Get("toToken")
	amount := q.Get("amount")

	if fromRef == "" || toRef == "" || amount == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "fromToken, toToken, and amount are required")
		return
	}

	from, err := services.ResolveToken(h.tokens, fromRef)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_from_token", err.Error())
		return
	}
	to, err := services.ResolveToken(h.tokens, toRef)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_to_token", err.Error())
		return
	}

	if v, err := entities.ParseUnits(amount, entities.NativeDecimals); err != nil || v.Sign() == 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be a positive decimal number")
		return
	}

	// Slippage is a percent, e.g. 0.5
	slippageBps := h.defaultSlippageBps
	if s := q.Get("slippage"); s != "" {
		slippageBps, err = entities.SlippagePercentToBps(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slippage", "slippage must be a percent in [0, 100)")
			return
		}
	}

	compare := false
	if s := q.Get("compare"); s != "" {
		compare, err = strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_compare", "compare must be a boolean")
			return
		}
	}

	req := services.QuoteRequest{
		FromToken:   from,
		ToToken:     to,
		Amount:      amount,
		SlippageBps: slippageBps,
	}

	var result entities.QuoteResult
	if compare {
		result = h.quotes.CompareRouters(r.Context(), req)
	} else {
		result = h.quotes.GetSwapQuote(r.Context(), req)
	}

	// A missing route is still a renderable quote
	writeJSON(w, http.StatusOK, buildQuoteResponse(from, to, slippageBps, result))
}

func buildQuoteResponse(from, to entities.Token, slippageBps uint64, result entities.QuoteResult) QuoteResponse {
	quote := result.Quote
	resp := QuoteResponse{
		Status:      string(result.Status),
		Reason:      result.Reason,
		FromToken:   TokenRef{Address: from.Address, Symbol: from.Symbol, Decimals: from.Decimals},
		ToToken:     TokenRef{Address: to.Address, Symbol: to.Symbol, Decimals: to.Decimals},
		AmountIn:    "0",
		SlippageBps: slippageBps,
		Path:        []string{},
	}
	resp.OutputAmount = result.OutputAmountString()
	resp.OutputFormatted = "0"
	if quote == nil {
		return resp
	}

	if quote.AmountIn != nil {
		resp.AmountIn = quote.AmountIn.String()
	}
	if !result.IsFound() {
		return resp
	}

	resp.FromToken.Decimals = quote.InputDecimals
	resp.ToToken.Decimals = quote.OutputDecimals
	resp.OutputFormatted = entities.FormatUnits(quote.OutputAmount, quote.OutputDecimals)
	if quote.MinAmountOut != nil {
		resp.MinAmountOut = quote.MinAmountOut.String()
	}
	resp.Path = quote.Path.Strings()
	resp.Router = quote.RouterAddress.Hex()
	resp.RouteDescription = quote.RouteDescription
	resp.PriceImpact = quote.PriceImpactPercent
	resp.ExecutionPrice = quote.ExecutionPrice
	return resp
}
