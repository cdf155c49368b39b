// Package mqtt publishes alerts and insights to an MQTT broker so dashboards
// and notification bridges can react without polling insightd.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/aulanota/insight/pkg/analytics"
	"github.com/aulanota/insight/pkg/config"
	"github.com/aulanota/insight/pkg/logx"
	"github.com/aulanota/insight/pkg/patterns"
)

// Publisher is a thin MQTT client for outbound analysis results. When
// disabled in configuration every method is a no-op, so callers never need
// to branch on the setting.
type Publisher struct {
	client    MQTT.Client
	cfg       config.MQTTConfig
	logger    *logx.Logger
	connected bool
}

// NewPublisher creates a publisher from the MQTT configuration section
func NewPublisher(cfg config.MQTTConfig, logger *logx.Logger) *Publisher {
	return &Publisher{cfg: cfg, logger: logger}
}

// Connect establishes the broker connection. Disabled publishers connect to
// nothing and report success.
func (p *Publisher) Connect() error {
	if !p.cfg.Enabled {
		p.logger.Debug("MQTT publisher disabled")
		return nil
	}

	opts := MQTT.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", p.cfg.Broker, p.cfg.Port))
	opts.SetClientID(p.cfg.ClientID)
	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(MQTT.Client) {
		p.connected = true
		p.logger.Info("MQTT connection established")
	})
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		p.connected = false
		p.logger.Error("MQTT connection lost", "error", err.Error())
	})

	p.client = MQTT.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	p.logger.Info("MQTT publisher connected",
		"broker", p.cfg.Broker, "port", p.cfg.Port)
	return nil
}

// Disconnect closes the broker connection
func (p *Publisher) Disconnect() {
	if p.client != nil && p.connected {
		p.client.Disconnect(250)
		p.connected = false
		p.logger.Info("MQTT publisher disconnected")
	}
}

// IsConnected reports whether the publisher has a live broker connection
func (p *Publisher) IsConnected() bool {
	return p.connected && p.client != nil && p.client.IsConnected()
}

// PublishAlert publishes a trigger alert under <prefix>/alerts/<subject>
func (p *Publisher) PublishAlert(alert patterns.TriggerAlert) error {
	topic := fmt.Sprintf("%s/alerts/%s", p.cfg.TopicPrefix, alert.SubjectID)
	return p.publishJSON(topic, alert)
}

// PublishRisk publishes a risk insight under <prefix>/risks/<subject>
func (p *Publisher) PublishRisk(risk analytics.RiskInsight) error {
	topic := fmt.Sprintf("%s/risks/%s", p.cfg.TopicPrefix, risk.SubjectID)
	return p.publishJSON(topic, risk)
}

// PublishInsights publishes predictive insights under
// <prefix>/insights/<subject>.
func (p *Publisher) PublishInsights(subjectID string, insights []analytics.PredictiveInsight) error {
	if len(insights) == 0 {
		return nil
	}
	topic := fmt.Sprintf("%s/insights/%s", p.cfg.TopicPrefix, subjectID)
	return p.publishJSON(topic, map[string]interface{}{
		"subject_id": subjectID,
		"timestamp":  time.Now(),
		"insights":   insights,
	})
}

// PublishStatus publishes daemon status under <prefix>/status
func (p *Publisher) PublishStatus(status map[string]interface{}) error {
	topic := fmt.Sprintf("%s/status", p.cfg.TopicPrefix)
	return p.publishJSON(topic, map[string]interface{}{
		"timestamp": time.Now(),
		"status":    status,
	})
}

func (p *Publisher) publishJSON(topic string, payload interface{}) error {
	if !p.cfg.Enabled || !p.IsConnected() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := p.client.Publish(topic, byte(p.cfg.QoS), false, data)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	p.logger.Debug("MQTT message published", "topic", topic, "size", len(data))
	return nil
}
