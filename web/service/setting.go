package service

import (
	"encoding/hex"
	"time"

	"x-lotto/config"
	"x-lotto/logger"
	"x-lotto/lottery"
	"x-lotto/util/common"
)

const secretKey = "panel-session-secret"

// SettingService 提供面板运行所需的配置，cookie 密钥保存在键值存储中。
type SettingService struct {
	settings *config.Settings
	kv       lottery.KeyValueStore
}

func NewSettingService(settings *config.Settings, kv lottery.KeyValueStore) *SettingService {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &SettingService{settings: settings, kv: kv}
}

func (s *SettingService) Settings() *config.Settings {
	return s.settings
}

func (s *SettingService) GetListen() string {
	return s.settings.Listen
}

func (s *SettingService) GetPort() int {
	return s.settings.Port
}

func (s *SettingService) GetBasePath() string {
	return s.settings.BasePath
}

func (s *SettingService) GetCertFile() string {
	return s.settings.CertFile
}

func (s *SettingService) GetKeyFile() string {
	return s.settings.KeyFile
}

func (s *SettingService) GetDefaultLocale() string {
	return s.settings.Locale.Default
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l := s.settings.Jobs.TimeZone
	if l == "" {
		l = "Local"
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		logger.Warningf("time zone %q is invalid, using Local: %v", l, err)
		return time.Local, nil
	}
	return location, nil
}

// GetSecret 返回 cookie 签名密钥，第一次调用时生成并保存。
func (s *SettingService) GetSecret() ([]byte, error) {
	if s.kv == nil {
		return common.RandomBytes(32)
	}
	raw, found, err := s.kv.Get(secretKey)
	if err != nil {
		return nil, err
	}
	if found {
		if secret, err := hex.DecodeString(string(raw)); err == nil && len(secret) >= 16 {
			return secret, nil
		}
		logger.Warning("stored panel secret is invalid, generating a new one")
	}
	secret, err := common.RandomBytes(32)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(secretKey, []byte(hex.EncodeToString(secret))); err != nil {
		return nil, err
	}
	return secret, nil
}
