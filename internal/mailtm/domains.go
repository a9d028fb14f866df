package mailtm

import (
	"context"
	"encoding/json"
	"net/http"
)

// Domains lists the address domains offered by the service, as provided by
// the server. Results are cached for an hour.
func (c *Client) Domains(ctx context.Context, useCache bool) ([]Domain, error) {
	key := domainsKey()

	if useCache {
		if raw, ok := c.cache.Get(key); ok {
			var domains []Domain
			if err := json.Unmarshal(raw, &domains); err == nil {
				c.log.Debug().Msg("using cached domains")
				return domains, nil
			}
		}
	}

	var list domainList
	if _, err := c.do(ctx, http.MethodGet, "/domains", nil, nil, &list); err != nil {
		return nil, err
	}

	if useCache {
		c.cache.Set(key, list.Member, domainsTTL)
	}

	c.log.Info().Int("count", len(list.Member)).Msg("retrieved domains")
	return list.Member, nil
}
