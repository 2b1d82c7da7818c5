package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	bootLogger "github.com/sentinel-seed/sentinel/internal/logger"
	"github.com/sentinel-seed/sentinel/pkg/checkers/deception"
	"github.com/sentinel-seed/sentinel/pkg/checkers/harmful_content"
	"github.com/sentinel-seed/sentinel/pkg/checkers/jailbreak_compliance"
	"github.com/sentinel-seed/sentinel/pkg/checkers/refusal_bypass"
	"github.com/sentinel-seed/sentinel/pkg/config"
	"github.com/sentinel-seed/sentinel/pkg/detectors/embedding_similarity"
	"github.com/sentinel-seed/sentinel/pkg/detectors/encoding_evasion"
	"github.com/sentinel-seed/sentinel/pkg/detectors/escalation"
	"github.com/sentinel-seed/sentinel/pkg/detectors/pattern_attack"
	"github.com/sentinel-seed/sentinel/pkg/detectors/structural"
	handlers "github.com/sentinel-seed/sentinel/pkg/handlers/http"
	"github.com/sentinel-seed/sentinel/pkg/domain/embedding"
	embeddingFactory "github.com/sentinel-seed/sentinel/pkg/infra/embedding/factory"
	infraLogger "github.com/sentinel-seed/sentinel/pkg/infra/logger"
	providerFactory "github.com/sentinel-seed/sentinel/pkg/infra/providers/factory"
	"github.com/sentinel-seed/sentinel/pkg/normalizer"
	"github.com/sentinel-seed/sentinel/pkg/observer"
	"github.com/sentinel-seed/sentinel/pkg/registry"
	"github.com/sentinel-seed/sentinel/pkg/server"
	"github.com/sentinel-seed/sentinel/pkg/validator"
)

var defaultDetectorWeights = map[string]float64{
	pattern_attack.DetectorName:       1.0,
	structural.DetectorName:           0.8,
	escalation.DetectorName:           0.7,
	encoding_evasion.DetectorName:     0.9,
	embedding_similarity.DetectorName: 0.9,
}

var defaultCheckerWeights = map[string]float64{
	harmful_content.CheckerName:      1.0,
	jailbreak_compliance.CheckerName: 1.0,
	deception.CheckerName:            0.7,
	refusal_bypass.CheckerName:       0.8,
}

func main() {
	boot := bootLogger.NewLogger(os.Getenv("LOG_LEVEL"))

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		boot.Warn("no .env file found, using system environment variables")
	}

	if err := config.Load("./config"); err != nil {
		boot.Fatal("failed to load config", err)
	}
	cfg := config.GetConfig()

	logger := infraLogger.NewLogger(cfg.Server.LogLevel)

	norm, err := normalizer.NewTextNormalizer(logger, normalizer.Config{})
	if err != nil {
		logger.WithError(err).Fatal("failed to build normalizer")
	}

	detectors := registry.NewRegistry(registry.SideInput, logger)
	registerDetectors(logger, cfg, detectors)

	checkers := registry.NewRegistry(registry.SideOutput, logger)
	registerCheckers(logger, checkers)

	warnUnknownComponents(logger, cfg.Validation, detectors, checkers)
	applyComponentConfig(logger, cfg.Validation, detectors)
	applyComponentConfig(logger, cfg.Validation, checkers)

	inputValidator := validator.NewInputValidator(logger, detectors, norm, cfg.Validation)
	outputValidator := validator.NewOutputValidator(logger, checkers, cfg.Validation)

	var exchangeObserver validator.ExchangeObserver
	if cfg.Judge.APIKey != "" {
		judgeClient, err := providerFactory.NewProviderLocator().Get(cfg.Judge.Provider)
		if err != nil {
			logger.WithError(err).Fatal("failed to resolve judge provider")
		}
		exchangeObserver = observer.NewObserver(logger, judgeClient, cfg.Judge, cfg.Validation.FailMode)
	} else {
		logger.Warn("no judge API key configured, observation gate disabled")
	}

	srv := server.NewSentinelServer(server.SentinelServerDI{
		Config: cfg,
		Logger: logger,
		HandlerTransport: handlers.HandlerTransport{
			ValidateInputHandler:  handlers.NewValidateInputHandler(logger, inputValidator),
			ValidateOutputHandler: handlers.NewValidateOutputHandler(logger, outputValidator),
			ObserveHandler:        handlers.NewObserveHandler(logger, exchangeObserver),
			ListComponentsHandler: handlers.NewListComponentsHandler(logger, detectors, checkers),
		},
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
}

func registerDetectors(logger *logrus.Logger, cfg *config.Config, detectors *registry.Registry) {
	patternDetector, err := pattern_attack.NewDetector(logger, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to build pattern detector")
	}
	mustRegister(logger, detectors, patternDetector.Name(), detectors.Register(patternDetector, defaultDetectorWeights[pattern_attack.DetectorName]))

	structuralDetector, err := structural.NewDetector(logger, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to build structural detector")
	}
	mustRegister(logger, detectors, structuralDetector.Name(), detectors.Register(structuralDetector, defaultDetectorWeights[structural.DetectorName]))

	escalationDetector, err := escalation.NewDetector(logger, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to build escalation detector")
	}
	mustRegister(logger, detectors, escalationDetector.Name(), detectors.Register(escalationDetector, defaultDetectorWeights[escalation.DetectorName]))

	encodingDetector, err := encoding_evasion.NewDetector(logger, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to build encoding detector")
	}
	mustRegister(logger, detectors, encodingDetector.Name(), detectors.Register(encodingDetector, defaultDetectorWeights[encoding_evasion.DetectorName]))

	var creator embedding.Creator
	if cfg.Embedding.APIKey != "" {
		locator := embeddingFactory.NewEmbeddingServiceLocator(&fasthttp.Client{}, logger, cfg.Embedding.Timeout)
		creator, err = locator.Resolve(cfg.Embedding.Provider)
		if err != nil {
			logger.WithError(err).Fatal("failed to resolve embedding provider")
		}
	} else {
		logger.Warn("no embedding API key configured, similarity detector runs without signal")
	}
	similarityDetector, err := embedding_similarity.NewDetector(logger, creator, map[string]interface{}{
		"provider":  cfg.Embedding.Provider,
		"model":     cfg.Embedding.Model,
		"api_key":   cfg.Embedding.APIKey,
		"threshold": cfg.Embedding.Threshold,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to build similarity detector")
	}
	mustRegister(logger, detectors, similarityDetector.Name(), detectors.Register(similarityDetector, defaultDetectorWeights[embedding_similarity.DetectorName]))
}

func registerCheckers(logger *logrus.Logger, checkers *registry.Registry) {
	harmfulChecker, err := harmful_content.NewChecker(logger, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to build harmful content checker")
	}
	mustRegister(logger, checkers, harmfulChecker.Name(), checkers.Register(harmfulChecker, defaultCheckerWeights[harmful_content.CheckerName]))

	complianceChecker := jailbreak_compliance.NewChecker(logger)
	mustRegister(logger, checkers, complianceChecker.Name(), checkers.Register(complianceChecker, defaultCheckerWeights[jailbreak_compliance.CheckerName]))

	deceptionChecker := deception.NewChecker(logger)
	mustRegister(logger, checkers, deceptionChecker.Name(), checkers.Register(deceptionChecker, defaultCheckerWeights[deception.CheckerName]))

	bypassChecker := refusal_bypass.NewChecker(logger)
	mustRegister(logger, checkers, bypassChecker.Name(), checkers.Register(bypassChecker, defaultCheckerWeights[refusal_bypass.CheckerName]))
}

func mustRegister(logger *logrus.Logger, _ *registry.Registry, name string, err error) {
	if err != nil {
		logger.WithError(err).WithField("component", name).Fatal("failed to register component")
	}
}

// applyComponentConfig overlays configured weights and toggles on a registry.
// The component config spans both registries, so a name registered in the
// other one is skipped here; warnUnknownComponents flags names registered in
// neither.
func applyComponentConfig(logger *logrus.Logger, cfg config.ValidationConfig, reg *registry.Registry) {
	registered := make(map[string]bool)
	for _, info := range reg.Components() {
		registered[info.Name] = true
	}

	for name, weight := range cfg.ComponentWeights {
		if !registered[name] {
			continue
		}
		if err := reg.SetWeight(name, weight); err != nil {
			logger.WithError(err).WithField("component", name).Warn("failed to set weight")
		}
	}

	if len(cfg.EnabledComponents) > 0 {
		enabled := make(map[string]bool, len(cfg.EnabledComponents))
		for _, name := range cfg.EnabledComponents {
			enabled[name] = true
		}
		for name := range registered {
			if !enabled[name] {
				_ = reg.Disable(name)
			}
		}
	}
	for _, name := range cfg.DisabledComponents {
		if !registered[name] {
			continue
		}
		_ = reg.Disable(name)
	}
}

// warnUnknownComponents logs component-config names that match no registered
// detector or checker, so a typo never silently drops a weight or toggle.
func warnUnknownComponents(logger *logrus.Logger, cfg config.ValidationConfig, regs ...*registry.Registry) {
	known := make(map[string]bool)
	for _, reg := range regs {
		for _, info := range reg.Components() {
			known[info.Name] = true
		}
	}
	warn := func(name, source string) {
		if !known[name] {
			logger.WithFields(logrus.Fields{
				"component": name,
				"source":    source,
			}).Warn("component config references unknown component")
		}
	}
	for name := range cfg.ComponentWeights {
		warn(name, "component_weights")
	}
	for _, name := range cfg.EnabledComponents {
		warn(name, "enabled_components")
	}
	for _, name := range cfg.DisabledComponents {
		warn(name, "disabled_components")
	}
}
