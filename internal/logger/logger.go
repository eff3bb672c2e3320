package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New construit le logger zap selon le niveau et l'environnement
// ("development" : sortie console lisible, sinon JSON).
func New(level, env string) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("niveau de log invalide %q: %w", level, err)
	}

	var config zap.Config
	if env == "development" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = logLevel

	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("construction du logger: %w", err)
	}
	return log, nil
}

// RequestLogger journalise chaque requête traitée par gin
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("Requête traitée", fields...)
		case status >= 400:
			log.Warn("Requête traitée", fields...)
		default:
			log.Info("Requête traitée", fields...)
		}
	}
}
