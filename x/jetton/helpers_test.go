package jetton

import "github.com/tendermint/tendermint/libs/common"

func tagPair(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}
