package registry

import (
	"fmt"

	"proptix/core/types"
	"proptix/crypto"
	"proptix/native/sale"
)

// Messages accepted by the collection registry.

type MsgCreateCollection struct {
	Deployment sale.DeploymentConfig `json:"deploymentConfig"`
	Runtime    sale.RuntimeConfig    `json:"runtimeConfig"`
}

type MsgSetBaseURI struct {
	Collection string `json:"collection"`
	URI        string `json:"uri"`
	Status     bool   `json:"status"`
}

type MsgSetWhitelist struct {
	Collection string   `json:"collection"`
	User       [20]byte `json:"user"`
	Status     bool     `json:"status"`
}

func attrAddr(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.PTXPrefix, addr[:]).String()
}

// HandleMsg dispatches a mutating registry message on behalf of the caller and
// returns the response attribute list.
func (r *Registry) HandleMsg(caller [20]byte, msg interface{}) (*types.Response, error) {
	switch m := msg.(type) {
	case MsgCreateCollection:
		addr, err := r.CreateCollection(caller, m.Deployment, m.Runtime)
		if err != nil {
			return nil, err
		}
		return types.NewResponse("create_collection").
			Add("owner", attrAddr(caller)).
			Add("collection", attrAddr(addr)), nil
	case MsgSetBaseURI:
		if err := r.SetBaseURI(caller, m.Collection, m.URI, m.Status); err != nil {
			return nil, err
		}
		return types.NewResponse("set_base_uri").
			Add("collection", m.Collection), nil
	case MsgSetWhitelist:
		if err := r.SetWhitelist(caller, m.Collection, m.User, m.Status); err != nil {
			return nil, err
		}
		return types.NewResponse("set_whitelist").
			Add("collection", m.Collection).
			Add("user", attrAddr(m.User)), nil
	default:
		return nil, fmt.Errorf("collection registry: unsupported message type %T", msg)
	}
}
