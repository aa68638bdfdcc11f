package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const variantQuery = `query getVariant($id: ID!) {
  productVariant(id: $id) {
    id
    title
    product {
      title
    }
    metafield(namespace: "custom", key: "download_link") {
      value
    }
  }
}`

// VariantGID builds the Admin API global id for a storefront variant id.
func VariantGID(variantID string) string {
	return "gid://shopify/ProductVariant/" + variantID
}

// Endpoint returns the Admin GraphQL URL for a store host such as
// "example.myshopify.com".
func Endpoint(store, apiVersion string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", store, apiVersion)
}

type Variant struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Product struct {
		Title string `json:"title"`
	} `json:"product"`
	Metafield *struct {
		Value string `json:"value"`
	} `json:"metafield"`
}

// DownloadLink returns the configured asset URL, or "" when the variant has
// no download_link metafield.
func (v *Variant) DownloadLink() string {
	if v == nil || v.Metafield == nil {
		return ""
	}
	return strings.TrimSpace(v.Metafield.Value)
}

type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewClient(endpoint, token string, client *http.Client) *Client {
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: client,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type variantResponse struct {
	Data *struct {
		ProductVariant *Variant `json:"productVariant"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// LookupVariant fetches a single variant. It returns (nil, nil) when the
// store knows no variant with that id.
func (c *Client) LookupVariant(ctx context.Context, gid string) (*Variant, error) {
	data, err := json.Marshal(graphQLRequest{
		Query:     variantQuery,
		Variables: map[string]any{"id": gid},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal variant query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create variant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query variant %s: %w", gid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog returned status %d for %s: %s", resp.StatusCode, gid, strings.TrimSpace(string(body)))
	}

	var result variantResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode variant response: %w", err)
	}

	if result.Data == nil {
		if len(result.Errors) > 0 {
			return nil, fmt.Errorf("catalog query failed for %s: %s", gid, result.Errors[0].Message)
		}
		return nil, fmt.Errorf("catalog returned no data for %s", gid)
	}

	return result.Data.ProductVariant, nil
}
