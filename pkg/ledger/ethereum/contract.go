package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI of the deployed LandRegistry contract. The off-chain service only
// touches this fixed surface; the contract's internals are opaque.
const landRegistryABI = `[
  {
    "type": "function",
    "name": "landExists",
    "stateMutability": "view",
    "inputs": [{"name": "_landId", "type": "bytes32"}],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "type": "function",
    "name": "lands",
    "stateMutability": "view",
    "inputs": [{"name": "_landId", "type": "bytes32"}],
    "outputs": [
      {"name": "ownerName", "type": "string"},
      {"name": "landArea", "type": "uint256"},
      {"name": "district", "type": "string"},
      {"name": "taluk", "type": "string"},
      {"name": "village", "type": "string"},
      {"name": "blockNumber", "type": "uint256"},
      {"name": "surveyNumber", "type": "uint256"},
      {"name": "ownerAddress", "type": "address"},
      {"name": "exists", "type": "bool"},
      {"name": "documentHash", "type": "string"},
      {"name": "verified", "type": "bool"},
      {"name": "price", "type": "uint256"}
    ]
  },
  {
    "type": "function",
    "name": "verifyAndRegisterLand",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "_ownerName", "type": "string"},
      {"name": "_landArea", "type": "uint256"},
      {"name": "_district", "type": "string"},
      {"name": "_taluk", "type": "string"},
      {"name": "_village", "type": "string"},
      {"name": "_blockNumber", "type": "uint256"},
      {"name": "_surveyNumber", "type": "uint256"},
      {"name": "_documentHash", "type": "string"},
      {"name": "_price", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "transferLandOwnership",
    "stateMutability": "payable",
    "inputs": [
      {"name": "_landId", "type": "bytes32"},
      {"name": "_newOwnerName", "type": "string"}
    ],
    "outputs": []
  },
  {
    "type": "event",
    "name": "LandRegistered",
    "anonymous": false,
    "inputs": [
      {"name": "landId", "type": "bytes32", "indexed": true},
      {"name": "owner", "type": "address", "indexed": true},
      {"name": "ownerName", "type": "string", "indexed": false},
      {"name": "documentHash", "type": "string", "indexed": false},
      {"name": "price", "type": "uint256", "indexed": false}
    ]
  },
  {
    "type": "event",
    "name": "OwnershipTransferred",
    "anonymous": false,
    "inputs": [
      {"name": "landId", "type": "bytes32", "indexed": true},
      {"name": "from", "type": "address", "indexed": true},
      {"name": "to", "type": "address", "indexed": true},
      {"name": "price", "type": "uint256", "indexed": false}
    ]
  }
]`

var registryABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(landRegistryABI))
	if err != nil {
		panic(err)
	}

	registryABI = parsed
}
