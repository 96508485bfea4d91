package softserv

import (
	"io"

	"xdao.co/psacall/wire"
)

func (s *Service) randomCall(h wire.Header, in, out []wire.Vec) wire.Status {
	if h.Selector != wire.SelGenerateRandom {
		return wire.StatusNotSupported
	}
	if len(in) != 0 || len(out) != 1 {
		return wire.StatusProgrammerError
	}
	// The output buffer is always filled to its full capacity.
	buf := out[0].Base[:out[0].Len]
	if _, err := io.ReadFull(s.rand, buf); err != nil {
		return wire.StatusHardwareFailure
	}
	return wire.StatusSuccess
}
