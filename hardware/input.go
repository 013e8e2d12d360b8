package hardware

func (con *Console) handleInput() {
	if con.u == nil {
		return
	}

	var drained bool
	for !drained {
		select {
		default:
			drained = true
		case inp := <-con.u.UserInput:
			con.Controllers[0].Input(inp)
		}
	}
}
