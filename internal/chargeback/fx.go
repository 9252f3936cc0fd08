package chargeback

import (
	"github.com/smallbiznis/chargedesk/internal/chargeback/present"
	"github.com/smallbiznis/chargedesk/internal/chargeback/repository"
	"github.com/smallbiznis/chargedesk/internal/chargeback/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chargeback.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(present.New),
)
