package log

// KV is a map of key/value pairs which can be given as the only key/value argument
// to a log function or to With().
type KV map[string]interface{}

const errorKey = "LOG_ERROR"

// normalize makes a key/value list out of the variadic arguments.
// Never fail on bad input. Logging calls are not error checked,
// so an odd list is padded and marked instead.
func normalize(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return nil
	}
	if len(kv) == 1 {
		if m, ok := kv[0].(KV); ok {
			kv = m.pairs()
		}
	}
	if len(kv)%2 != 0 {
		kv = append(kv, nil, errorKey, "odd number of key/value arguments")
	}
	return kv
}

func (m KV) pairs() []interface{} {
	arr := make([]interface{}, 0, len(m)*2)
	for k, v := range m {
		arr = append(arr, k, v)
	}
	return arr
}
