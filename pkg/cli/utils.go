package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/keybase/dbus"
	"github.com/keybase/go-keychain/secretservice"
)

const (
	service    = "claims-backend"
	collection = secretservice.DefaultCollection
)

// FillKeychainValues replaces every string field of args whose value starts
// with "keychain:" by the matching secret from the desktop keychain. This
// keeps B2 credentials and passphrases out of the environment.
func FillKeychainValues[T any](args *T) error {
	var svc *secretservice.SecretService
	var session *secretservice.Session

	v := reflect.ValueOf(args).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.String {
			continue
		}
		element, ok := strings.CutPrefix(f.String(), "keychain:")
		if !ok {
			continue
		}

		if svc == nil {
			var err error
			svc, session, err = initSecretService()
			if err != nil {
				return fmt.Errorf("init secret service: %v", err)
			}
		}

		secretValue, err := lookupSecret(svc, session, element)
		if err != nil {
			return err
		}
		if !f.CanSet() {
			return fmt.Errorf("set value for field %s", v.Type().Field(i).Name)
		}
		f.SetString(secretValue)
	}
	return nil
}

func lookupSecret(svc *secretservice.SecretService, session *secretservice.Session, element string) (string, error) {
	items, err := svc.SearchCollection(collection, secretservice.Attributes{
		"service": service,
		"element": element,
	})
	if err != nil {
		return "", fmt.Errorf("search keychain element: %v", err)
	}
	if len(items) < 1 {
		return "", fmt.Errorf("keychain element %s not found", element)
	}
	if len(items) > 1 {
		return "", fmt.Errorf("found more than one keychain element for %s", element)
	}

	secretValue, err := svc.GetSecret(items[0], *session)
	if err != nil {
		return "", fmt.Errorf("get value from keychain: %v", err)
	}
	return string(secretValue), nil
}

func initSecretService() (*secretservice.SecretService, *secretservice.Session, error) {
	svc, err := secretservice.NewService()
	if err != nil {
		return nil, nil, fmt.Errorf("create keychain service: %v", err)
	}
	if err := svc.Unlock([]dbus.ObjectPath{collection}); err != nil {
		return nil, nil, fmt.Errorf("unlock keychain service: %v", err)
	}
	session, err := svc.OpenSession(secretservice.AuthenticationDHAES)
	if err != nil {
		return nil, nil, fmt.Errorf("open session: %v", err)
	}
	return svc, session, nil
}
