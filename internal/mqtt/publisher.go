package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

const publishTimeout = 5 * time.Second

// Publisher mirrors the weather state to an MQTT broker as retained JSON messages so
// widgets and home automation can render the last known weather.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

// StateSource is implemented by weather.Service.
type StateSource interface {
	Subscribe(fn func(weather.State)) (cancel func())
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("ERROR: MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("INFO: MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return NewPublisherWithClient(client, cfg.TopicPrefix), nil
}

// NewPublisherWithClient wraps an already connected client.
func NewPublisherWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		enabled:     true,
	}
}

// Attach publishes every settled state emitted by src until the returned function is called.
func (p *Publisher) Attach(src StateSource) (detach func()) {
	if !p.enabled {
		return func() {}
	}
	return src.Subscribe(func(st weather.State) {
		if err := p.PublishState(st); err != nil {
			log.Printf("ERROR: %v", err)
		}
	})
}

type dailyMessage struct {
	Location *weather.Location       `json:"location,omitempty"`
	Unit     weather.TemperatureUnit `json:"unit"`
	Days     []weather.DailySummary  `json:"days"`
}

type currentMessage struct {
	Location    string                     `json:"location"`
	Temperature string                     `json:"temperature"`
	Description string                     `json:"description"`
	Icon        string                     `json:"icon,omitempty"`
	Conditions  *weather.CurrentConditions `json:"conditions"`
}

// PublishState publishes st as retained messages. States captured mid-fetch are skipped.
func (p *Publisher) PublishState(st weather.State) error {
	if !p.enabled || st.Loading {
		return nil
	}

	if err := p.publishJSON("state", st); err != nil {
		return err
	}

	if st.CurrentWeather != nil {
		msg := currentMessage{
			Location:    st.LocationName(),
			Temperature: st.Temperature(),
			Description: st.MainDescription(),
			Icon:        st.WeatherIcon(),
			Conditions:  st.CurrentWeather,
		}
		if err := p.publishJSON("current", msg); err != nil {
			return err
		}
	}

	return p.publishJSON("forecast/daily", dailyMessage{
		Location: st.CurrentLocation,
		Unit:     st.Unit,
		Days:     st.DailyForecast,
	})
}

func (p *Publisher) publishJSON(suffix string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", suffix, err)
	}

	topic := fmt.Sprintf("%s/%s", p.topicPrefix, suffix)
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	return nil
}

func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnected()
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}
