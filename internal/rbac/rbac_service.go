package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// staticPolicy grants the admin role the whole attendance surface. There is
// exactly one privileged role in this deployment, so the policy ships with
// the binary instead of a table.
var staticPolicy = [][]string{
	{"admin", "attendance", "read"},
	{"admin", "attendance", "export"},
}

type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := enforcer.AddPolicies(staticPolicy); err != nil {
		return nil, err
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
