/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/api/option"
)

// CredentialsOption turns a service account key into a client option. The
// key is base64 encoded JSON; plain JSON is accepted as well. The decoded key
// never touches the disk.
func CredentialsOption(key string) (option.ClientOption, error) {
	data, err := DecodeServiceAccountKey(key)
	if err != nil {
		return nil, err
	}
	return option.WithCredentialsJSON(data), nil
}

// DecodeServiceAccountKey returns the JSON document held by key.
func DecodeServiceAccountKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("service account key is empty")
	}

	var data []byte
	if strings.HasPrefix(key, "{") {
		data = []byte(key)
	} else {
		decoded, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("service account key is not valid base64: %w", err)
		}
		data = decoded
	}

	var doc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("service account key is not valid JSON: %w", err)
	}
	if doc.Type == "" {
		return nil, fmt.Errorf("service account key has no type field")
	}
	return data, nil
}
