package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/KYEONGBINKEUM/todo-sub001/models"
	"github.com/KYEONGBINKEUM/todo-sub001/repository"
)

// AIService is the request gateway: it gates a caller on entitlement
// and quota, enriches the context, builds the action's prompt, invokes
// the model, records consumption and assembles the response envelope.
type AIService interface {
	// Process handles one AI request for an authenticated user.
	Process(ctx context.Context, userID string, req models.AIRequest) (*models.AIResponse, *AIError)

	// Usage reports the user's current-month consumption and limit.
	Usage(userID string) (*models.MonthlyUsage, *AIError)
}

type aiService struct {
	usageRepo    repository.UsageRepository
	settingsRepo repository.SettingsRepository
	registry     PromptRegistry
	fetcher      TranscriptFetcher
	invoker      ModelInvoker

	transcriptMaxChars int
}

// NewAIService creates the gateway with all collaborators injected.
func NewAIService(
	usageRepo repository.UsageRepository,
	settingsRepo repository.SettingsRepository,
	registry PromptRegistry,
	fetcher TranscriptFetcher,
	invoker ModelInvoker,
	transcriptMaxChars int,
) AIService {
	return &aiService{
		usageRepo:          usageRepo,
		settingsRepo:       settingsRepo,
		registry:           registry,
		fetcher:            fetcher,
		invoker:            invoker,
		transcriptMaxChars: transcriptMaxChars,
	}
}

// Process runs the gateway state machine. Gate failures return before
// any external call and record nothing; once the model has actually
// run, usage is recorded no matter what happens to the output.
func (s *aiService) Process(ctx context.Context, userID string, req models.AIRequest) (*models.AIResponse, *AIError) {
	// 1. Authenticate. The middleware puts a verified identity in the
	// context; an empty one means it never ran.
	if userID == "" {
		return nil, newAIError(CodeUnauthenticated, "authentication required", nil)
	}

	// 2. Load entitlement. A missing settings record is the fail-safe
	// default (free plan, no admin), not an error.
	settings, err := s.settingsRepo.GetUserSettings(userID)
	if err != nil {
		log.Printf("ERROR: [AIService] Failed to load settings for userID %s: %v", userID, err)
		return nil, newAIError(CodeInternal, "AI processing failed, please try again", err)
	}

	// 3. Entitlement gate. Plans without a token budget (free) have no
	// AI access; admins always pass.
	budget := settings.Budget()
	if !settings.IsAdmin && budget <= 0 {
		log.Printf("INFO: [AIService] Denied userID %s: plan '%s' does not include AI features.", userID, settings.Plan)
		return nil, newAIError(CodePermissionDenied, "AI features require a paid plan", nil)
	}

	// 4. Quota gate, skipped entirely for admins. This is a soft
	// limit: the check and the later increment are separate calls, so
	// two in-flight requests can both pass and overshoot the budget by
	// at most one request's tokens. Accepted by design; do not replace
	// with a lock.
	var usedBefore int64
	if !settings.IsAdmin {
		usage, usageErr := s.usageRepo.GetMonthlyUsage(userID)
		if usageErr != nil {
			log.Printf("ERROR: [AIService] Failed to read usage for userID %s: %v", userID, usageErr)
			return nil, newAIError(CodeInternal, "AI processing failed, please try again", usageErr)
		}
		usedBefore = usage.TotalTokens()
		if usedBefore >= budget {
			log.Printf("INFO: [AIService] Quota exceeded for userID %s: used %d of %d tokens.", userID, usedBefore, budget)
			return nil, newAIError(CodeResourceExhausted, "monthly token limit reached", nil)
		}
	}

	// Narrow the free-form context bag into the action's typed
	// variant. Unknown actions and missing required fields fail here,
	// before any external call.
	actionCtx, err := ContextForAction(req.Action, req.Context)
	if err != nil {
		if errors.Is(err, ErrUnsupportedAction) {
			return nil, newAIError(CodeInvalidArgument, "unsupported action: "+string(req.Action), err)
		}
		return nil, newAIError(CodeInvalidArgument, err.Error(), err)
	}

	// 5. Context enrichment for the video actions.
	if req.Action.NeedsTranscript() {
		if aiErr := s.enrichVideoContext(ctx, userID, actionCtx); aiErr != nil {
			return nil, aiErr
		}
	}

	// 6. Prompt build.
	prompt, err := s.registry.Build(req.Action, actionCtx, req.Language)
	if err != nil {
		if errors.Is(err, ErrUnsupportedAction) {
			return nil, newAIError(CodeInvalidArgument, "unsupported action: "+string(req.Action), err)
		}
		return nil, newAIError(CodeInvalidArgument, err.Error(), err)
	}

	// 7. Model invocation. Provider detail never reaches the caller.
	modelResp, err := s.invoker.Invoke(ctx, prompt.System, prompt.User, true)
	if err != nil {
		log.Printf("ERROR: [AIService] Model invocation failed for userID %s (action %s): %v", userID, req.Action, err)
		return nil, newAIError(CodeInternal, "AI processing failed, please try again", err)
	}

	// 8. Record usage. The call happened and was billed by the
	// provider, so the ledger write is unconditional: a recording
	// failure is logged and reconciled out of band rather than turning
	// a delivered result into an error.
	if incErr := s.usageRepo.IncrementUsage(userID, modelResp.InputTokens, modelResp.OutputTokens); incErr != nil {
		log.Printf("ERROR: [AIService] Usage recording failed for userID %s after a billed call (in=%d, out=%d): %v",
			userID, modelResp.InputTokens, modelResp.OutputTokens, incErr)
	}

	// 9. Response assembly.
	return s.assembleResponse(userID, settings, usedBefore, modelResp), nil
}

// enrichVideoContext fetches and truncates the transcript for the two
// video actions. A fetch failure degrades to the metadata-only prompt
// variant when the client supplied title/author/description; the
// request only fails outright when neither transcript nor metadata
// exist.
func (s *aiService) enrichVideoContext(ctx context.Context, userID string, actionCtx ActionContext) *AIError {
	vc, ok := actionCtx.(*VideoContext)
	if !ok {
		return newAIError(CodeInternal, "AI processing failed, please try again", errors.New("video action carried a non-video context"))
	}

	if vc.SourceURL == "" {
		if vc.HasMetadata() {
			log.Printf("INFO: [AIService] No video URL for userID %s; building from metadata only.", userID)
			return nil
		}
		return newAIError(CodeInvalidArgument, "video actions require a 'url' or video metadata", nil)
	}

	transcript, err := s.fetcher.FetchTranscript(ctx, vc.SourceURL)
	if err != nil {
		if vc.HasMetadata() {
			log.Printf("WARN: [AIService] Transcript fetch failed for userID %s (%v); falling back to metadata-only prompt.", userID, err)
			return nil
		}
		log.Printf("WARN: [AIService] Transcript fetch failed for userID %s and no metadata is available: %v", userID, err)
		return newAIError(CodeFailedPrecondition, err.Error(), err)
	}

	vc.Transcript = TruncateTranscript(transcript, s.transcriptMaxChars)
	return nil
}

// assembleResponse builds the uniform success envelope. Model output
// that fails to parse as JSON is wrapped as {"text": <raw>} instead of
// failing the request: the model ran and was billed, so the caller
// gets a success with some payload.
func (s *aiService) assembleResponse(userID string, settings *models.UserSettings, usedBefore int64, modelResp *ModelResponse) *models.AIResponse {
	trimmed := strings.TrimSpace(modelResp.Text)
	var result json.RawMessage
	if json.Valid([]byte(trimmed)) && trimmed != "" {
		result = json.RawMessage(trimmed)
	} else {
		log.Printf("WARN: [AIService] Model output for userID %s is not valid JSON (%d chars); wrapping as text.", userID, len(modelResp.Text))
		wrapped, _ := json.Marshal(map[string]string{"text": modelResp.Text})
		result = wrapped
	}

	limit := models.UnlimitedBudget
	if !settings.IsAdmin {
		limit = settings.Budget()
	}

	// Prefer a fresh ledger read so concurrent requests are reflected;
	// fall back to the locally known sum if the read fails.
	used := usedBefore + modelResp.InputTokens + modelResp.OutputTokens
	if fresh, err := s.usageRepo.GetMonthlyUsage(userID); err == nil {
		used = fresh.TotalTokens()
	} else {
		log.Printf("WARN: [AIService] Could not re-read usage for userID %s after increment: %v", userID, err)
	}

	return &models.AIResponse{
		Result: result,
		TokensUsed: models.TokensUsed{
			Input:  modelResp.InputTokens,
			Output: modelResp.OutputTokens,
		},
		MonthlyUsage: models.MonthlyUsage{
			Used:  used,
			Limit: limit,
		},
	}
}

// Usage reports the caller's current-month token consumption and the
// limit their plan allows (-1 for unlimited).
func (s *aiService) Usage(userID string) (*models.MonthlyUsage, *AIError) {
	if userID == "" {
		return nil, newAIError(CodeUnauthenticated, "authentication required", nil)
	}

	settings, err := s.settingsRepo.GetUserSettings(userID)
	if err != nil {
		log.Printf("ERROR: [AIService] Failed to load settings for userID %s: %v", userID, err)
		return nil, newAIError(CodeInternal, "failed to load usage", err)
	}
	usage, err := s.usageRepo.GetMonthlyUsage(userID)
	if err != nil {
		log.Printf("ERROR: [AIService] Failed to read usage for userID %s: %v", userID, err)
		return nil, newAIError(CodeInternal, "failed to load usage", err)
	}

	limit := models.UnlimitedBudget
	if !settings.IsAdmin {
		limit = settings.Budget()
	}
	return &models.MonthlyUsage{Used: usage.TotalTokens(), Limit: limit}, nil
}
