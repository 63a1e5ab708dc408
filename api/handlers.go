package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/clearvault/vaultd/domain"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{
		"service": "vaultd",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dbErr := s.store.Ping(ctx)
	chainHealthy := s.chainClient.GetHealth(ctx)

	status := http.StatusOK
	if dbErr != nil || !chainHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"database":  dbErr == nil,
		"chainRpc":  chainHealthy,
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type initializeRequest struct {
	UserPubkey      string `json:"userPubkey"`
	UserKeypairPath string `json:"userKeypairPath"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !isValidPubkey(req.UserPubkey) {
		writeError(w, domain.NewVaultError(domain.ErrInvalidPubkey, "invalid userPubkey"))
		return
	}

	result, err := s.manager.Initialize(r.Context(), req.UserPubkey, req.UserKeypairPath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, txResultDTO(result))
}

type amountRequest struct {
	UserPubkey      string `json:"userPubkey"`
	Amount          uint64 `json:"amount"`
	UserKeypairPath string `json:"userKeypairPath"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !isValidPubkey(req.UserPubkey) {
		writeError(w, domain.NewVaultError(domain.ErrInvalidPubkey, "invalid userPubkey"))
		return
	}

	result, err := s.manager.Deposit(r.Context(), req.UserPubkey, req.Amount, req.UserKeypairPath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, txResultDTO(result))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !isValidPubkey(req.UserPubkey) {
		writeError(w, domain.NewVaultError(domain.ErrInvalidPubkey, "invalid userPubkey"))
		return
	}

	result, err := s.manager.Withdraw(r.Context(), req.UserPubkey, req.Amount, req.UserKeypairPath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, txResultDTO(result))
}

type lockRequest struct {
	UserPubkey                 string `json:"userPubkey"`
	Amount                     uint64 `json:"amount"`
	PositionID                 string `json:"positionId"`
	PositionManagerKeypairPath string `json:"positionManagerKeypairPath"`
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !isValidPubkey(req.UserPubkey) {
		writeError(w, domain.NewVaultError(domain.ErrInvalidPubkey, "invalid userPubkey"))
		return
	}

	result, err := s.manager.Lock(r.Context(), req.UserPubkey, req.Amount, req.PositionID, req.PositionManagerKeypairPath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, txResultDTO(result))
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !isValidPubkey(req.UserPubkey) {
		writeError(w, domain.NewVaultError(domain.ErrInvalidPubkey, "invalid userPubkey"))
		return
	}

	result, err := s.manager.Unlock(r.Context(), req.UserPubkey, req.Amount, req.PositionID, req.PositionManagerKeypairPath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, txResultDTO(result))
}

type transferRequest struct {
	FromPubkey                   string `json:"fromPubkey"`
	ToPubkey                     string `json:"toPubkey"`
	Amount                       uint64 `json:"amount"`
	Reason                       string `json:"reason"`
	LiquidationEngineKeypairPath string `json:"liquidationEngineKeypairPath"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !isValidPubkey(req.FromPubkey) || !isValidPubkey(req.ToPubkey) {
		writeError(w, domain.NewVaultError(domain.ErrInvalidPubkey, "invalid fromPubkey or toPubkey"))
		return
	}

	reason := domain.ParseTransferReason(req.Reason)
	result, err := s.manager.Transfer(
		r.Context(), req.FromPubkey, req.ToPubkey, req.Amount, reason, req.LiquidationEngineKeypairPath,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, transferResultDTO(result))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	v, err := s.manager.ResolveVault(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, vaultDTOFrom(v))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	var txType *domain.TransactionType
	if v := q.Get("type"); v != "" {
		t := domain.TransactionType(v)
		txType = &t
	}

	entries, err := s.manager.ListTransactions(r.Context(), user, limit, offset, txType)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]journalEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, journalEntryDTOFrom(e))
	}

	// No authoritative total-count query is defined (spec.md §9 open
	// question); total is a placeholder until pagination is redesigned.
	writeData(w, http.StatusOK, map[string]interface{}{
		"transactions": dtos,
		"total":        0,
		"limit":        limit,
		"offset":       offset,
	})
}

func (s *Server) handleTVL(w http.ResponseWriter, r *http.Request) {
	total, locked, available, activeCount, err := s.manager.GetTVL(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"totalValueLocked": total,
		"totalLocked":      locked,
		"totalAvailable":   available,
		"activeVaults":     activeCount,
		"formattedTvl":     formatAmount(total),
	})
}

type mintRequest struct {
	UserPubkey string `json:"userPubkey"`
	Amount     uint64 `json:"amount"`
}

func (s *Server) handleMintUSDT(w http.ResponseWriter, r *http.Request) {
	if !s.isDevnet {
		writeError(w, domain.NewVaultError(domain.ErrNotDevnet, "mint-usdt is only available against a devnet RPC endpoint"))
		return
	}

	var req mintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !isValidPubkey(req.UserPubkey) {
		writeError(w, domain.NewVaultError(domain.ErrInvalidPubkey, "invalid userPubkey"))
		return
	}

	v, err := s.manager.ResolveVault(r.Context(), req.UserPubkey)
	if err != nil {
		writeError(w, err)
		return
	}

	signature, err := s.chainClient.RequestAirdrop(r.Context(), v.TokenAccount, req.Amount)
	if err != nil {
		writeError(w, domain.NewInternalError(domain.ErrMintFailed, "airdrop request failed", err))
		return
	}
	writeData(w, http.StatusOK, map[string]string{"signature": signature})
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return domain.NewVaultError(domain.ErrInvalidAmount, "malformed request body: "+err.Error())
	}
	return nil
}

// isValidPubkey applies a loose identifier check: 8 to 128 ASCII letters
// or digits. It performs no curve-point validity check, since the concrete
// chain is abstracted away (see chainaddr package doc).
func isValidPubkey(pubkey string) bool {
	if len(pubkey) < 8 || len(pubkey) > 128 {
		return false
	}
	for _, c := range pubkey {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		isBase58ish := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isHex && !isBase58ish {
			return false
		}
	}
	return true
}

func formatAmount(smallestUnits int64) string {
	return fmt.Sprintf("%.2f USDT", float64(smallestUnits)/1_000_000)
}
